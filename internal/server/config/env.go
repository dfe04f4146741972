package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr       = "FOODLOG_GRPC_ADDR"
	EnvDatabaseDSN    = "FOODLOG_DATABASE_DSN"
	EnvSecretKey      = "FOODLOG_SECRET_KEY"
	EnvAccessTokenTTL = "FOODLOG_ACCESS_TOKEN_TTL"
	EnvS3User         = "FOODLOG_S3_USER"
	EnvS3Password     = "FOODLOG_S3_PASSWORD"
	EnvS3Bucket       = "FOODLOG_S3_BUCKET"
	EnvS3Region       = "FOODLOG_S3_REGION"
	EnvS3Endpoint     = "FOODLOG_S3_ENDPOINT"
	EnvPhotoURLTTL    = "FOODLOG_PHOTO_URL_TTL"
	EnvLogLevel       = "FOODLOG_LOG_LEVEL"
)

// envFilePath returns the file given with -env, or .env.
func envFilePath(args []string) string {
	path := defaultEnvFile
	set := flag.NewFlagSet("env", flag.ContinueOnError)
	set.StringVar(&path, "env", path, "path to .env file")
	_ = set.Parse(flagx.FilterArgs(args, []string{"-env"}))
	return path
}

// parseEnv overlays cfg with variables from the process environment and from
// the dotenv file at path. The process environment wins. A missing file is
// not an error.
func parseEnv(cfg *Config, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		values = map[string]string{}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}

	setString(&cfg.EndpointAddrGRPC, lookup(EnvGRPCAddr))
	setString(&cfg.DatabaseDSN, lookup(EnvDatabaseDSN))
	setString(&cfg.SecretKey, lookup(EnvSecretKey))
	setString(&cfg.S3RootUser, lookup(EnvS3User))
	setString(&cfg.S3RootPassword, lookup(EnvS3Password))
	setString(&cfg.S3Bucket, lookup(EnvS3Bucket))
	setString(&cfg.S3Region, lookup(EnvS3Region))
	setString(&cfg.S3BaseEndpoint, lookup(EnvS3Endpoint))
	setString(&cfg.LogLevel, lookup(EnvLogLevel))

	if err := setEnvDuration(&cfg.AccessTokenValidityDuration, EnvAccessTokenTTL, lookup(EnvAccessTokenTTL)); err != nil {
		return err
	}
	return setEnvDuration(&cfg.PhotoURLValidityDuration, EnvPhotoURLTTL, lookup(EnvPhotoURLTTL))
}

func setEnvDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
