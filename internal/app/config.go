package app

import (
	"strings"

	"github.com/fisionote/fisionote-backend/internal/platform/envutil"
)

type Config struct {
	Mode           string
	HTTPAddr       string
	JWTSecretKey   string
	RedisAddr      string
	RedisPassword  string
	AllowedOrigins []string
	PolicyPath     string
	Environment    string
	Version        string
}

func LoadConfig() Config {
	origins := []string{}
	for _, o := range strings.Split(envutil.Str("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Mode:           envutil.Str("LOG_MODE", "development"),
		HTTPAddr:       envutil.Str("HTTP_ADDR", ":8080"),
		JWTSecretKey:   envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		RedisAddr:      envutil.Str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  envutil.Str("REDIS_PASSWORD", ""),
		AllowedOrigins: origins,
		PolicyPath:     envutil.Str("COMPLIANCE_POLICY_PATH", ""),
		Environment:    envutil.Str("DEPLOY_ENV", "dev"),
		Version:        envutil.Str("SERVICE_VERSION", "dev"),
	}
}
