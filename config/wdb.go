package config

import (
	"path"

	"github.com/mooglife/mooglife/config/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Wdb struct {
	Db *gorm.DB
}

func NewWdb(dsn string, sqliteDir string, useSqlite bool) *Wdb {
	var db *gorm.DB
	var err error
	if useSqlite {
		db, err = gorm.Open(sqlite.Open(path.Join(sqliteDir, "config.sqlite")), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
	} else {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Error),
			CreateBatchSize: 10,
		})
	}
	if err != nil {
		panic(err)
	}
	log.Info("connect config db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.TierQuota{}, &schema.IpRateWhitelist{}, &schema.Param{})
}

func (w *Wdb) GetAllAvailableTierQuotas() ([]schema.TierQuota, error) {
	res := make([]schema.TierQuota, 0, 5)
	err := w.Db.Where("available = ?", true).Find(&res).Error
	return res, err
}

func (w *Wdb) GetAllAvailableIpRateWhitelist() ([]schema.IpRateWhitelist, error) {
	res := make([]schema.IpRateWhitelist, 0, 10)
	err := w.Db.Where("available = ?", true).Find(&res).Error
	return res, err
}

func (w *Wdb) GetParam() (param schema.Param, err error) {
	err = w.Db.First(&param).Error
	if err == gorm.ErrRecordNotFound {
		param = schema.Param{
			HolderPageSize: 100,
			SwapPageSize:   50,
			OgBalanceFloor: "10000",
			RewardPerOg:    "500",
		}
		return param, nil
	}
	return
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
