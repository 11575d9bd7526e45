package database

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xelth-com/poslabel/internal/config"
	"github.com/xelth-com/poslabel/internal/models"
)

const (
	embeddedDataPath = "./db_data"
	embeddedPort     = 5434
	embeddedPassword = "postgres"
)

// DB wraps gorm.DB and the embedded PostgreSQL process when one was started.
type DB struct {
	*gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
}

// Embedded reports whether the service runs its own PostgreSQL process:
// a localhost host with no password configured.
func Embedded(cfg config.DatabaseConfig) bool {
	return cfg.Host == "localhost" && cfg.Password == ""
}

// stalePID returns the pid recorded by a previous embedded instance, if any.
func stalePID() (int, bool) {
	data, err := os.ReadFile(filepath.Join(embeddedDataPath, "postmaster.pid"))
	if err != nil {
		return 0, false
	}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	if !sc.Scan() {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		log.Printf("⚠️  Unreadable postmaster.pid: %v", err)
		return 0, false
	}
	return pid, true
}

// reapStaleEmbedded stops a PostgreSQL left running by a crashed run and
// removes its pid file.
func reapStaleEmbedded() {
	pid, ok := stalePID()
	if !ok {
		return
	}
	pidFile := filepath.Join(embeddedDataPath, "postmaster.pid")
	proc, err := os.FindProcess(pid)
	if err != nil || proc.Signal(syscall.Signal(0)) != nil {
		log.Printf("🧹 Removing stale postmaster.pid (PID %d not running)", pid)
		_ = os.Remove(pidFile)
		return
	}

	log.Printf("⚠️  Orphaned PostgreSQL (PID %d), stopping it", pid)
	_ = proc.Signal(syscall.SIGTERM)
	for i := 0; i < 10; i++ {
		time.Sleep(500 * time.Millisecond)
		if proc.Signal(syscall.Signal(0)) != nil {
			log.Println("✅ Orphaned PostgreSQL stopped")
			_ = os.Remove(pidFile)
			return
		}
	}
	log.Println("⚠️  PostgreSQL ignored SIGTERM, killing it")
	_ = proc.Kill()
	time.Sleep(500 * time.Millisecond)
	_ = os.Remove(pidFile)
}

func portInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func startEmbedded(cfg config.DatabaseConfig) (*embeddedpostgres.EmbeddedPostgres, error) {
	reapStaleEmbedded()
	for i := 0; i < 6 && portInUse(embeddedPort); i++ {
		time.Sleep(500 * time.Millisecond)
	}
	if portInUse(embeddedPort) {
		return nil, fmt.Errorf("port %d is still in use by another process", embeddedPort)
	}

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(embeddedDataPath).
		Port(uint32(embeddedPort)).
		Database(cfg.Database).
		Username(cfg.Username).
		Password(embeddedPassword))
	if err := pg.Start(); err != nil {
		return nil, fmt.Errorf("failed to start embedded database: %w", err)
	}
	log.Printf("✅ Embedded PostgreSQL started on port %d", embeddedPort)
	return pg, nil
}

// DSN builds the lib/pq style connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
}

// Connect opens the label database, starting an embedded PostgreSQL first
// when no external server is configured.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	var embedded *embeddedpostgres.EmbeddedPostgres
	if Embedded(cfg) {
		log.Println("📦 Mode: [Embedded PostgreSQL]")
		pg, err := startEmbedded(cfg)
		if err != nil {
			return nil, err
		}
		embedded = pg
		cfg.Port = strconv.Itoa(embeddedPort)
		cfg.Password = embeddedPassword
	} else {
		log.Printf("🌐 Mode: [External PostgreSQL] %s:%s", cfg.Host, cfg.Port)
	}

	level := logger.Warn
	if cfg.Silent {
		level = logger.Silent
	}
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	log.Println("✅ Database connection established")
	return &DB{DB: db, embedded: embedded}, nil
}

// Migrate creates or updates the tables the label service owns.
func (db *DB) Migrate() error {
	if err := db.DB.AutoMigrate(
		&models.Product{},
		&models.LabelTemplate{},
		&models.PrintJob{},
		&models.SettingsRecord{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("✅ Database schema is up to date")
	return nil
}

// Close closes the pool and stops the embedded process if there is one.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if db.embedded != nil {
		log.Println("🛑 Stopping Embedded PostgreSQL...")
		if stopErr := db.embedded.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	return err
}
