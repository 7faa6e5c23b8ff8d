package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/application"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/service"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client

	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	events   application.EventPublisher
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetUserRepo(r repository.UserRepository) { userRepo = r }
func GetUserRepo() repository.UserRepository  { return userRepo }
func SetHasher(h service.PasswordHasher)      { hasher = h }
func GetHasher() service.PasswordHasher       { return hasher }
func SetEvents(p application.EventPublisher)  { events = p }
func GetEvents() application.EventPublisher   { return events }
