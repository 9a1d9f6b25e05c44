package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/foodmap/pkg/geo"
)

// AppConfig holds the application configuration.
// It's populated once by LoadConfig.
var AppConfig Configuration
var once sync.Once

// Configuration defines the structure for application settings.
type Configuration struct {
	ServerPort string
	APIBase    string

	// DatabaseURL 为空时使用内存存储
	DatabaseURL string

	GeoapifyAPIKey string
	GeocodeTimeout time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	AdminEmail string
	AppURL     string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string

	StaleDays            int
	RegionBounds         geo.Bounds
	VerificationSchedule string
	VerificationHour     int
}

const (
	defaultServerPort = "8080"        // Default server port.
	envServerPortKey  = "SERVER_PORT" // Environment variable name for the server port.
	defaultAPIBase    = "/api"
	envAPIBaseKey     = "API_BASE"

	envDatabaseURLKey = "DATABASE_URL"

	envGeoapifyKey           = "GEOAPIFY_API_KEY"
	envGeoapifyLegacyKey     = "VITE_GEOAPIFY_API_KEY" // 前端构建时使用的变量名，兼容读取
	defaultGeocodeTimeoutSec = 5
	envGeocodeTimeoutKey     = "GEOCODE_TIMEOUT_SECONDS"
	envRedisAddrKey          = "REDIS_ADDR"
	envRedisPasswordKey      = "REDIS_PASSWORD"
	envRedisDBKey            = "REDIS_DB"

	envAdminEmailKey = "ADMIN_EMAIL"
	defaultAppURL    = "http://localhost:5000"
	envAppURLKey     = "APP_URL"

	envJWTSecretKey         = "JWT_SECRET_KEY" // Environment variable name for the JWT secret.
	envAdminUsernameKey     = "ADMIN_USERNAME"
	envAdminPasswordHashKey = "ADMIN_PASSWORD_HASH"

	defaultStaleDays        = 60
	envStaleDaysKey         = "VERIFICATION_STALE_DAYS"
	defaultRegionBounds     = "32.3,-97.9,33.4,-96.2" // 达拉斯-沃斯堡
	envRegionBoundsKey      = "REGION_BOUNDS"
	envVerificationSchedule = "VERIFICATION_SCHEDULE"
	defaultVerificationHour = 3
	envVerificationHourKey  = "VERIFICATION_HOUR"
)

// LoadConfig loads configuration from environment variables or defaults.
// It should be called once at application startup.
func LoadConfig() {
	once.Do(func() {
		AppConfig = LoadConfigFromEnv()
		log.Println("应用配置已加载。")
	})
}

// LoadConfigFromEnv 每次调用都重新读取环境变量，测试中使用
func LoadConfigFromEnv() Configuration {
	serverPort := os.Getenv(envServerPortKey)
	if serverPort == "" {
		serverPort = defaultServerPort
		log.Printf("信息: %s 环境变量未设置。正在使用默认端口 %s。", envServerPortKey, defaultServerPort)
	}

	apiBase := os.Getenv(envAPIBaseKey)
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	apiBase = "/" + strings.Trim(apiBase, "/")

	databaseURL := strings.TrimSpace(os.Getenv(envDatabaseURLKey))
	if databaseURL == "" {
		log.Printf("信息: %s 环境变量未设置。数据将保存在内存中，重启后丢失。", envDatabaseURLKey)
	}

	geoapifyKey := os.Getenv(envGeoapifyKey)
	if geoapifyKey == "" {
		geoapifyKey = os.Getenv(envGeoapifyLegacyKey)
	}
	if geoapifyKey == "" {
		log.Printf("警告: %s 环境变量未设置。邮编查询与地理编码不可用。", envGeoapifyKey)
	}

	geocodeTimeout := time.Duration(intFromEnv(envGeocodeTimeoutKey, defaultGeocodeTimeoutSec)) * time.Second
	if geocodeTimeout <= 0 {
		geocodeTimeout = defaultGeocodeTimeoutSec * time.Second
	}

	appURL := strings.TrimRight(os.Getenv(envAppURLKey), "/")
	if appURL == "" {
		appURL = defaultAppURL
		log.Printf("信息: %s 环境变量未设置。正在使用默认URL %s。这在生产环境中可能不正确。", envAppURLKey, defaultAppURL)
	}

	adminUsername := os.Getenv(envAdminUsernameKey)
	adminHash := os.Getenv(envAdminPasswordHashKey)
	jwtSecret := os.Getenv(envJWTSecretKey)
	if adminUsername != "" && adminHash != "" && jwtSecret == "" {
		log.Printf("警告: %s 环境变量未设置。管理员登录已启用但没有JWT密钥，登录将被拒绝。", envJWTSecretKey)
	}

	staleDays := intFromEnv(envStaleDaysKey, defaultStaleDays)
	if staleDays <= 0 {
		staleDays = defaultStaleDays
	}

	boundsText := os.Getenv(envRegionBoundsKey)
	if boundsText == "" {
		boundsText = defaultRegionBounds
	}
	bounds, err := geo.ParseBounds(boundsText)
	if err != nil {
		log.Printf("警告: %s 无效 (%v)。正在使用默认范围 %s。", envRegionBoundsKey, err, defaultRegionBounds)
		bounds = geo.DFWBounds
	}

	hour := intFromEnv(envVerificationHourKey, defaultVerificationHour)
	if hour < 0 || hour > 23 {
		hour = defaultVerificationHour
	}

	return Configuration{
		ServerPort:           serverPort,
		APIBase:              apiBase,
		DatabaseURL:          databaseURL,
		GeoapifyAPIKey:       geoapifyKey,
		GeocodeTimeout:       geocodeTimeout,
		RedisAddr:            os.Getenv(envRedisAddrKey),
		RedisPassword:        os.Getenv(envRedisPasswordKey),
		RedisDB:              intFromEnv(envRedisDBKey, 0),
		AdminEmail:           os.Getenv(envAdminEmailKey),
		AppURL:               appURL,
		JWTSecret:            jwtSecret,
		AdminUsername:        adminUsername,
		AdminPasswordHash:    adminHash,
		StaleDays:            staleDays,
		RegionBounds:         bounds,
		VerificationSchedule: strings.ToLower(os.Getenv(envVerificationSchedule)),
		VerificationHour:     hour,
	}
}

// AdminAuthEnabled 仅当用户名、密码哈希与 JWT 密钥都配置时才启用管理员鉴权
func (c Configuration) AdminAuthEnabled() bool {
	return c.AdminUsername != "" && c.AdminPasswordHash != "" && c.JWTSecret != ""
}

// intFromEnv 解析失败时回退到默认值
func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("警告: %s=%q 不是整数，使用默认值 %d。", key, v, def)
		return def
	}
	return n
}
