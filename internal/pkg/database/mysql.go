// internal/pkg/database/mysql.go
package database

import (
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"almacen/internal/pkg/bootstrap"
)

// OpenMySQL 按配置建立 GORM 连接，两个服务共用同一套连接参数风格。
func OpenMySQL(cfg *bootstrap.Config) (*gorm.DB, error) {
	dsnCfg := mysql.NewConfig()
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = cfg.MySQL.Addr
	dsnCfg.User = cfg.MySQL.User
	dsnCfg.Passwd = cfg.MySQL.Password
	dsnCfg.DBName = cfg.MySQL.Database
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC

	db, err := gorm.Open(gormmysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// 把方言错误翻译成 gorm 的通用哨兵（ErrDuplicatedKey 等），
		// 仓储层靠它们映射领域错误
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}
