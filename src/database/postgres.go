package database

import (
	"context"
	"fmt"

	"ledger/src/config"
	aws_handler "ledger/src/utils/aws"

	"github.com/jackc/pgx/v5/pgxpool"
)

func SetupDB(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// BuildDSN assembles the Postgres DSN, resolving the password from AWS
// Secrets Manager when passwordSecretArn is configured.
func BuildDSN(cfg *config.Config) (string, error) {
	if cfg.Databases.SQL.ConnectionString != "" {
		return cfg.Databases.SQL.ConnectionString, nil
	}

	password := cfg.Databases.SQL.Password
	if arn := cfg.Databases.SQL.PasswordSecretArn; arn != "" {
		handler, err := aws_handler.NewAWSHandler(cfg.AWS.Region)
		if err != nil {
			return "", err
		}
		password, err = handler.SecretManager.GetPassword(arn)
		if err != nil {
			return "", fmt.Errorf("resolving database password secret: %w", err)
		}
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Databases.SQL.Host,
		cfg.Databases.SQL.Username,
		password,
		cfg.Databases.SQL.Database,
		cfg.Databases.SQL.Port), nil
}
