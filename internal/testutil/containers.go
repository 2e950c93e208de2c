// containers.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Helpers for running a real database with testcontainers.
// Used by the integration tests and by cmd/testcontainers, which passes a nil *testing.T.

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/localnerve/storefront-data/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	containerDatabase = "storefront"
	containerUser     = "storefront"
	containerPassword = "storefront-pass"
)

// DatabaseContainer is a running database and the configuration that reaches it
type DatabaseContainer struct {
	Container testcontainers.Container
	Config    *config.Config
}

// Terminate stops the container
func (dc *DatabaseContainer) Terminate(t *testing.T) {
	if dc.Container == nil {
		return
	}
	if err := dc.Container.Terminate(context.Background()); err != nil {
		logMessage(t, "Failed to terminate database: %v", err)
	}
}

// ContainerImage returns DB_IMAGE, or the default image for dbType
func ContainerImage(dbType string) string {
	if image := os.Getenv("DB_IMAGE"); image != "" {
		return image
	}
	switch dbType {
	case "postgres":
		return "postgres:17-alpine"
	case "mysql":
		return "mysql:8.4"
	default:
		return "mariadb:11"
	}
}

// hostConfig keeps the data directory in memory and, when DB_HOST_PORT is set,
// binds the database to that fixed local port
func hostConfig(port nat.Port, dataDir string) func(*container.HostConfig) {
	return func(hc *container.HostConfig) {
		hc.Tmpfs = map[string]string{dataDir: "rw"}
		if hostPort := os.Getenv("DB_HOST_PORT"); hostPort != "" {
			hc.PortBindings = nat.PortMap{
				port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: hostPort}},
			}
		}
	}
}

// StartDatabase runs a postgres, mysql or mariadb container for dbType.
// base supplies every non-database setting of the returned configuration.
func StartDatabase(t *testing.T, dbType string, base *config.Config) (*DatabaseContainer, error) {
	ctx := context.Background()

	var (
		port       nat.Port
		dataDir    string
		env        map[string]string
		waitingFor wait.Strategy
	)
	switch dbType {
	case "postgres":
		port = nat.Port("5432/tcp")
		dataDir = "/var/lib/postgresql/data"
		env = map[string]string{
			"POSTGRES_DB":       containerDatabase,
			"POSTGRES_USER":     containerUser,
			"POSTGRES_PASSWORD": containerPassword,
		}
		waitingFor = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second)
	case "mysql", "mariadb":
		port = nat.Port("3306/tcp")
		dataDir = "/var/lib/mysql"
		env = map[string]string{
			"MYSQL_ROOT_PASSWORD": containerPassword + "-root",
			"MYSQL_DATABASE":      containerDatabase,
			"MYSQL_USER":          containerUser,
			"MYSQL_PASSWORD":      containerPassword,
		}
		waitingFor = wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
	default:
		return nil, fmt.Errorf("no container available for database type %s", dbType)
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:              ContainerImage(dbType),
			ExposedPorts:       []string{string(port)},
			Env:                env,
			WaitingFor:         waitingFor,
			HostConfigModifier: hostConfig(port, dataDir),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", dbType, err)
	}
	dc := &DatabaseContainer{Container: ctr}

	host, err := ctr.Host(ctx)
	if err != nil {
		dc.Terminate(t)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := ctr.MappedPort(ctx, port)
	if err != nil {
		dc.Terminate(t)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	cfg := *base
	cfg.DBType = dbType
	cfg.DBHost = host
	cfg.DBPort = mapped.Port()
	cfg.DBDatabase = containerDatabase
	cfg.DBUser = containerUser
	cfg.DBPassword = containerPassword
	cfg.DBConnectionLimit = 5
	dc.Config = &cfg

	logMessage(t, "DB_TYPE=%s DB_HOST=%s DB_PORT=%s DB_DATABASE=%s DB_USER=%s DB_PASSWORD=%s",
		cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)
	return dc, nil
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
