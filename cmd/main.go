package main

import (
	"context"
	"log"

	infra "github.com/codeclimbers/leetboard/internal/infrastructure"
	"github.com/codeclimbers/leetboard/internal/infrastructure/driver"
	"github.com/codeclimbers/leetboard/internal/infrastructure/logging"
	"github.com/codeclimbers/leetboard/internal/infrastructure/retry"
	"github.com/codeclimbers/leetboard/internal/infrastructure/uuid"
	ihttp "github.com/codeclimbers/leetboard/internal/interfaces/http"
	"github.com/codeclimbers/leetboard/internal/leetcode"
	"github.com/codeclimbers/leetboard/internal/user"
	"github.com/codeclimbers/leetboard/internal/weekly"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	})
	if err != nil {
		log.Fatalf("Failed to create DB connection: %s\n", err)
	}
	logger.Debug("Create db connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
	)
	rdb := driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)

	UUIDGenerator := uuid.NewNanoIDGenerator(option.IDLength)
	UserRepo := user.NewUserRepository(dbConn, UUIDGenerator)

	commitRetry := &retry.Policy{
		MaxAttempts: option.Snapshot.RetryAttempts,
		Backoff:     option.Snapshot.RetryBackoff,
		Classify:    weekly.CommitRetryable,
	}
	SnapshotStore := weekly.NewSnapshotStore(dbConn, option.Snapshot.TopN, commitRetry)

	bootCtx := logging.SetLoggerInContext(context.Background(), logger)
	if err := UserRepo.EnsureSchema(bootCtx); err != nil {
		log.Fatalf("Failed to prepare users table: %s\n", err)
	}
	if err := SnapshotStore.EnsureSchema(bootCtx); err != nil {
		log.Fatalf("Failed to prepare weekly_winners table: %s\n", err)
	}

	Provider := leetcode.NewClient(option.Upstream.BaseURL, option.Upstream.Timeout)
	var activity weekly.ActivityProvider = Provider
	if option.Upstream.CacheTTL > 0 {
		activity = leetcode.NewCachedProvider(Provider, rdb, option.Upstream.CacheTTL, logger)
	}

	UserUseCase := user.NewUserUseCase(UserRepo, Provider)
	Collector := weekly.NewCollector(UserRepo, activity, logger, option.Snapshot.MaxConcurrent)
	Job := weekly.NewSnapshotJob(Collector, UserRepo, SnapshotStore, option.Snapshot.TopN, UUIDGenerator, logger)

	Scheduler, err := weekly.NewScheduler(Job, option.Snapshot.Schedule, option.Snapshot.RunTimeout, logger)
	if err != nil {
		log.Fatalf("Failed to create snapshot scheduler: %s\n", err)
	}
	Scheduler.Start()
	defer Scheduler.Stop()

	ihttp.Serve(dbConn, rdb, option, UserUseCase, Collector, SnapshotStore, logger)
}
