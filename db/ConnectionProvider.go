package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-pg/pg/v10"
	"github.com/research-marketplace/account-deletion-service/view"
	log "github.com/sirupsen/logrus"
)

const defaultPoolSize = 20

type ConnectionProvider interface {
	GetConnection() *pg.DB
	Ping(ctx context.Context) error
	Close() error
}

type connectionProviderImpl struct {
	creds view.DbCredentials
	mutex sync.Mutex
	db    *pg.DB
}

func NewConnectionProvider(creds *view.DbCredentials) ConnectionProvider {
	return &connectionProviderImpl{creds: *creds}
}

func (c *connectionProviderImpl) GetConnection() *pg.DB {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		poolSize := c.creds.PoolSize
		if poolSize <= 0 {
			poolSize = defaultPoolSize
		}
		c.db = pg.Connect(&pg.Options{
			Addr:       fmt.Sprintf("%s:%d", c.creds.Host, c.creds.Port),
			User:       c.creds.Username,
			Password:   c.creds.Password,
			Database:   c.creds.Database,
			PoolSize:   poolSize,
			MaxRetries: 5,
		})
	}
	return c.db
}

func (c *connectionProviderImpl) Ping(ctx context.Context) error {
	return c.GetConnection().Ping(ctx)
}

func (c *connectionProviderImpl) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if err != nil {
		log.Errorf("Failed to close database connection: %v", err)
	}
	c.db = nil
	return err
}
