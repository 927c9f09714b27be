package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	ServiceRole string // booth, geo, bridge, motion
	ServerPort  string
	LogLevel    string
	LogFormat   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBMigrate  bool

	AWSRegion          string
	SQSTriggerQueueURL string // capture triggers from roadside sensors, optional
	IoTMQTTEndpoint    string // barrier outcome publishing, optional

	JWTSecret          string
	JWTExpirationHours time.Duration
	AdminUsername      string // bootstrap admin, created at geo start when set
	AdminPassword      string

	StationID        string
	BoothURL         string // motion -> booth
	GeoServiceURL    string // booth -> rendezvous, bridge -> rendezvous
	BridgeURL        string // rendezvous -> websocket bridge
	SnapshotURL      string // camera JPEG endpoint
	GeofenceRadiusKm float64
	OCRMinConfidence float32
	GeoTimeout       time.Duration
	RedisAddr        string // cross-instance rendezvous relay, optional

	CallbackRatePerSecond int
	CallbackBurst         int

	MotionFrameInterval time.Duration
	MotionShutdownDelay time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Config: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	radius, err := strconv.ParseFloat(getEnv("GEOFENCE_RADIUS_KM", "2"), 64)
	if err != nil {
		radius = 2
	}
	rps, _ := strconv.Atoi(getEnv("CALLBACK_RATE_PER_SECOND", "5"))
	burst, _ := strconv.Atoi(getEnv("CALLBACK_BURST", "10"))

	minConfidence, err := strconv.ParseFloat(getEnv("OCR_MIN_CONFIDENCE", "0"), 32)
	if err != nil {
		minConfidence = 0
	}
	role := getEnv("SERVICE_ROLE", "booth")

	return &Config{
		ServiceRole: role,
		ServerPort:  getEnv("SERVER_PORT", defaultPort(role)),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "app"),
		DBPassword: getEnv("DB_PASSWORD", "roadtrip123"),
		DBName:     getEnv("DB_NAME", "app"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		DBMigrate:  getEnv("DB_MIGRATE", "true") == "true",

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		SQSTriggerQueueURL: getEnv("SQS_TRIGGER_QUEUE_URL", ""),
		IoTMQTTEndpoint:    getEnv("IOT_MQTT_ENDPOINT", ""),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-toll-operator-secret"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,
		AdminUsername:      getEnv("ADMIN_USERNAME", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),

		StationID:        getEnv("STATION_ID", "navtoll123"),
		BoothURL:         getEnv("BOOTH_URL", "http://localhost:5002"),
		GeoServiceURL:    getEnv("GEO_SERVICE_URL", "http://localhost:8000"),
		BridgeURL:        getEnv("BRIDGE_URL", "http://localhost:3001"),
		SnapshotURL:      getEnv("CAMERA_SNAPSHOT_URL", "http://localhost:8081/snapshot.jpg"),
		GeofenceRadiusKm: radius,
		OCRMinConfidence: float32(minConfidence),
		GeoTimeout:       getDuration("GEO_TIMEOUT", 10*time.Second),
		RedisAddr:        getEnv("REDIS_ADDR", ""),

		CallbackRatePerSecond: rps,
		CallbackBurst:         burst,

		MotionFrameInterval: getDuration("MOTION_FRAME_INTERVAL", 33*time.Millisecond),
		MotionShutdownDelay: getDuration("MOTION_SHUTDOWN_DELAY", 5*time.Second),
	}
}

// defaultPort keeps the ports the booth, database API and websocket bridge have always listened on.
func defaultPort(role string) string {
	switch role {
	case "geo":
		return "8000"
	case "bridge":
		return "3001"
	case "motion":
		return "9102" // metrics only
	}
	return "5002"
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Debugf("Config: '%s' not set, using default '%s'", key, fallback)
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Config: invalid duration for '%s' (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}
