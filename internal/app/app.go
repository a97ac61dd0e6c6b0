// Package app opens the backing services selected by configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"swipeinterview/internal/config"
	"swipeinterview/internal/model"
	"swipeinterview/internal/repository"
)

// App holds the open connections. Redis is nil when unreachable and not
// required; Mongo and SQL are nil unless the store backend needs them.
type App struct {
	Config *config.Config

	Mongo *mongo.Client
	DB    *mongo.Database
	SQL   *sql.DB
	Redis *redis.Client

	Sessions  repository.SessionStore
	Questions repository.QuestionRepo // nil without Mongo
}

// Open connects to the configured session store and to Redis
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if err := a.openRedis(ctx, cfg.Store == config.StoreRedis); err != nil {
		return nil, err
	}

	switch cfg.Store {
	case config.StoreRedis:
		a.Sessions = repository.NewRedisSessionStore(a.Redis)

	case config.StoreMongo:
		if err := a.OpenMongo(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Sessions = repository.NewMongoSessionStore(a.DB)

	case config.StorePostgres:
		if err := a.openPostgres(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Sessions = repository.NewPostgresSessionStore(a.SQL)

	default:
		a.Close(ctx)
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store)
	}

	log.Printf("Session store: %s", cfg.Store)
	return a, nil
}

func (a *App) openRedis(ctx context.Context, required bool) error {
	rdb := redis.NewClient(&redis.Options{
		Addr: a.Config.RedisAddr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		if required {
			return fmt.Errorf("failed to ping Redis: %w", err)
		}
		log.Printf("Warning: Redis unavailable (%v), leaderboard and caches disabled", err)
		return nil
	}

	a.Redis = rdb
	log.Println("Connected to Redis")
	return nil
}

// OpenMongo connects to MongoDB if not already connected
func (a *App) OpenMongo(ctx context.Context) error {
	if a.Mongo != nil {
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	a.Mongo = client
	a.DB = client.Database(a.Config.MongoDB)
	a.Questions = repository.NewQuestionRepo(a.DB)
	log.Println("Connected to MongoDB")
	return nil
}

func (a *App) openPostgres(ctx context.Context) error {
	if a.Config.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	db, err := sql.Open("postgres", a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open Postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping Postgres: %w", err)
	}
	if err := repository.EnsureKVSchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to create kv table: %w", err)
	}

	a.SQL = db
	log.Println("Connected to Postgres")
	return nil
}

// Catalog picks the question catalog: an explicit YAML file wins, then a
// seeded Mongo collection, then the built-in questions.
func (a *App) Catalog(ctx context.Context) ([]model.Question, error) {
	if a.Config.CatalogFile != "" {
		questions, err := config.LoadCatalog(a.Config.CatalogFile)
		if err != nil {
			return nil, err
		}
		log.Printf("Question catalog: %s (%d questions)", a.Config.CatalogFile, len(questions))
		return questions, nil
	}

	if a.Questions != nil {
		questions, err := a.Questions.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions from MongoDB: %w", err)
		}
		if len(questions) > 0 {
			if err := config.ValidateCatalog(questions); err != nil {
				return nil, err
			}
			log.Printf("Question catalog: MongoDB (%d questions)", len(questions))
			return questions, nil
		}
	}

	questions := config.DefaultCatalog()
	log.Printf("Question catalog: built-in (%d questions)", len(questions))
	return questions, nil
}

// Close releases every open connection
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Mongo != nil {
		a.Mongo.Disconnect(ctx)
	}
	if a.SQL != nil {
		a.SQL.Close()
	}
}
