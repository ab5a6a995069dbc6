package state

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"github.com/Saff9/campus-connect/config"
)

type JwtSecret struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// RealtimeSettings are the resolved websocket knobs, converted from the
// raw config once so the rest of the process never touches config.Conf
// for them.
type RealtimeSettings struct {
	AllowedOrigins   []string
	HeartbeatTimeout time.Duration
}

// AppState bundles every external resource the process owns. Constructed
// once at startup and passed down; nothing reaches for globals.
type AppState struct {
	Ctx    context.Context
	Cancel context.CancelFunc

	DB     *gorm.DB
	Redis  *redis.Client
	Mongo  *mongo.Client
	ChatDB *mongo.Database

	JwtSecret *JwtSecret
	Realtime  RealtimeSettings
}

func InitAppState(ctx context.Context, cancel context.CancelFunc) (*AppState, error) {
	cfg := config.Conf

	db, err := InitPostgres(cfg.DATABASE.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	mongoClient, chatDB, err := InitMongo(ctx, cfg.DATABASE.Mongo.Url, cfg.DATABASE.Mongo.Name)
	if err != nil {
		return nil, err
	}

	rdb, err := InitRedis(cfg.DATABASE.Redis.Addr, cfg.DATABASE.Redis.Password, 0)
	if err != nil {
		return nil, err
	}

	jwtSecret, err := InitSecret(cfg.App.PrivateKeyPath, cfg.App.PublicKeyPath)
	if err != nil {
		return nil, err
	}

	return &AppState{
		Ctx:       ctx,
		Cancel:    cancel,
		DB:        db,
		Redis:     rdb,
		Mongo:     mongoClient,
		ChatDB:    chatDB,
		JwtSecret: jwtSecret,
		Realtime: RealtimeSettings{
			AllowedOrigins:   cfg.REALTIME.AllowedOrigins,
			HeartbeatTimeout: time.Duration(cfg.REALTIME.HeartbeatTimeout) * time.Second,
		},
	}, nil
}

func (a *AppState) Close() {
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			log.Info().Msg("closing postgres connection")
			sqlDB.Close()
		}
	}

	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("closing mongo client")
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect mongo client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("closing redis client")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
