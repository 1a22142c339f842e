package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cancelBookingHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/get_booking"
	getMemberBookingsHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/get_member_bookings"
	getRoomHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/get_room"
	getRoomConfigHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/get_room_config"
	healthHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/health"
	listBookingsHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/list_bookings"
	listRoomsHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/list_rooms"
	toggleRoomHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/toggle_room"
	updateRoomConfigHandler "github.com/m04kA/SMC-RoomBooking/internal/api/handlers/update_room_config"
	"github.com/m04kA/SMC-RoomBooking/internal/api/middleware"
	"github.com/m04kA/SMC-RoomBooking/internal/config"
	"github.com/m04kA/SMC-RoomBooking/internal/infra/cache/availability"
	bookingRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/config"
	roomRepo "github.com/m04kA/SMC-RoomBooking/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/events"
	"github.com/m04kA/SMC-RoomBooking/internal/integrations/memberservice"
	bookingsService "github.com/m04kA/SMC-RoomBooking/internal/service/bookings"
	configService "github.com/m04kA/SMC-RoomBooking/internal/service/config"
	roomsService "github.com/m04kA/SMC-RoomBooking/internal/service/rooms"
	createBookingUC "github.com/m04kA/SMC-RoomBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-RoomBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-RoomBooking/pkg/clock"
	"github.com/m04kA/SMC-RoomBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomBooking/pkg/logger"
	"github.com/m04kA/SMC-RoomBooking/pkg/metrics"
	"github.com/m04kA/SMC-RoomBooking/pkg/tracing"
	"github.com/m04kA/SMC-RoomBooking/pkg/txmanager"
)

// Кэш доступности: redis или заглушка
type availabilityCache interface {
	Get(ctx context.Context, roomID int64, date time.Time) ([]bool, bool, error)
	Generation(ctx context.Context, roomID int64, date time.Time) (int64, error)
	SetIfUnchanged(ctx context.Context, roomID int64, date time.Time, generation int64, booked []bool) error
	Invalidate(ctx context.Context, roomID int64, date time.Time) error
}

// Публикация событий: kafka или заглушка
type eventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-RoomBooking...")
	log.Info("Configuration loaded from config.toml")

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}
	timeProvider := clock.Local{Loc: loc}
	log.Info("Booking timezone: %s", loc)

	// Трассировка
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to setup tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled (endpoint=%s, ratio=%.2f)", cfg.Tracing.OTLPEndpoint, cfg.Tracing.SampleRatio)
	}

	// Инициализируем метрики (если включены). Методы *metrics.Metrics безопасны для nil.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// Репозитории и менеджер транзакций
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	roomRepository := roomRepo.NewRepository(wrappedDB)
	configRepository := configRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	healthChecks := map[string]healthHandler.Pinger{
		"postgres": healthHandler.PingFunc(db.PingContext),
	}

	// Кэш доступности слотов
	var cache availabilityCache = availability.Nop{}
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisCache := availability.NewCache(rdb, time.Duration(cfg.Redis.TTL)*time.Second)
		if err := redisCache.Ping(context.Background()); err != nil {
			// Без кэша сервис работает, доступность читается из БД
			log.Warn("Redis is unavailable at %s: %v", cfg.Redis.Addr, err)
		}
		cache = redisCache
		healthChecks["redis"] = redisCache
		log.Info("Availability cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Публикация событий бронирований
	var publisher eventPublisher = events.Nop{}
	var kafkaPublisher *events.Publisher
	if cfg.Kafka.Enabled {
		writer := events.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, time.Duration(cfg.Kafka.WriteTimeout)*time.Second)
		kafkaPublisher = events.NewPublisher(writer)
		publisher = kafkaPublisher
		log.Info("Booking events enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Клиент справочника участников
	memberClient := memberservice.NewClient(
		cfg.MemberService.URL,
		time.Duration(cfg.MemberService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (MemberService=%s timeout=%ds)",
		cfg.MemberService.URL, cfg.MemberService.Timeout)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		roomRepository,
		memberClient,
		cache,
		publisher,
		metricsCollector,
		txMgr,
		timeProvider,
		log,
	)
	roomSvc := roomsService.NewService(roomRepository, memberClient, log)
	configSvc := configService.NewService(
		configRepository,
		roomRepository,
		memberClient,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		roomRepository,
		configRepository,
		memberClient,
		cache,
		publisher,
		metricsCollector,
		txMgr,
		timeProvider,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		roomRepository,
		cache,
		metricsCollector,
		timeProvider,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getMemberBookings := getMemberBookingsHandler.NewHandler(bookingSvc, log)
	listRooms := listRoomsHandler.NewHandler(roomSvc, log)
	getRoom := getRoomHandler.NewHandler(roomSvc, log)
	toggleRoom := toggleRoomHandler.NewHandler(roomSvc, log)
	getRoomConfig := getRoomConfigHandler.NewHandler(configSvc, log)
	updateRoomConfig := updateRoomConfigHandler.NewHandler(configSvc, log)
	health := healthHandler.NewHandler(healthChecks, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Комнаты
	api.HandleFunc("/rooms", listRooms.Handle).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}", getRoom.Handle).Methods(http.MethodGet)

	// Сетка слотов комнаты на дату
	api.HandleFunc("/rooms/{roomId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующие настройки бронирования комнаты
	api.HandleFunc("/rooms/{roomId}/config", getRoomConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования (с ограничением частоты)
	var createHandler http.Handler = http.HandlerFunc(createBooking.Handle)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		createHandler = limiter.Middleware(createHandler)
		log.Info("Rate limit on booking creation: %.1f rps, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	protected.Handle("/bookings", createHandler).Methods(http.MethodPost)

	// Список бронирований (для администраторов)
	protected.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Бронирования участника
	protected.HandleFunc("/members/{memberId}/bookings", getMemberBookings.Handle).Methods(http.MethodGet)

	// --- Управление комнатами (для администраторов) ---
	protected.HandleFunc("/rooms/{roomId}/toggle", toggleRoom.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/rooms/{roomId}/config", updateRoomConfig.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/config", updateRoomConfig.Handle).Methods(http.MethodPut)

	// CORS и трассировка поверх роутера
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowedHeaders: []string{"Content-Type", middleware.UserIDHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(r)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(corsHandler, cfg.Metrics.ServiceName),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error("Failed to close kafka writer: %v", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracing: %v", err)
	}

	log.Info("Server stopped gracefully")
}
