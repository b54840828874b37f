// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wfunc/teenpatti/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormRoom{}, &models.GormRoundResult{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveRoom 保存房间元数据, 重复写入忽略
func (p *GormPostgreSQL) SaveRoom(rec models.RoomRecord) error {
	row := rec.ToGormRoom()
	return p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_code"}},
		DoNothing: true,
	}).Create(&row).Error
}

// SaveRoundResult 按 round_id 追加对局结果, 重复投递忽略
func (p *GormPostgreSQL) SaveRoundResult(rec models.RoundRecord) error {
	row, err := rec.ToGormRoundResult()
	if err != nil {
		return err
	}
	return p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
