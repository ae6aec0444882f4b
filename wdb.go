package mooglife

import (
	"path"
	"time"

	"github.com/mooglife/mooglife/schema"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, "mooglife.sqlite")+"?_busy_timeout=5000"), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(
		&schema.ApiKey{}, &schema.Holder{}, &schema.SwapTx{},
		&schema.Airdrop{}, &schema.OgReward{}, &schema.MarketSnapshot{},
	)
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}

// about api keys

func (w *Wdb) GetApiKeyByToken(token string) (res schema.ApiKey, err error) {
	err = w.Db.Where("token = ?", token).First(&res).Error
	return
}

func (w *Wdb) CreateApiKey(key *schema.ApiKey) error {
	return w.Db.Create(key).Error
}

func (w *Wdb) GetApiKeys() ([]schema.ApiKey, error) {
	res := make([]schema.ApiKey, 0, 20)
	err := w.Db.Order("id asc").Find(&res).Error
	return res, err
}

func (w *Wdb) UpdateApiKeyStatus(id uint, status string) error {
	return w.Db.Model(&schema.ApiKey{}).Where("id = ?", id).Update("status", status).Error
}

// TouchApiKeyUsage records one authenticated request in a single update:
// the counter rolls to 1 when the stored window date is not today, otherwise
// it increments. With a finite limit the update is guarded so a key at its
// quota is never advanced; false means the quota was already consumed.
func (w *Wdb) TouchApiKeyUsage(id uint, today string, limit int64) (bool, error) {
	now := time.Now()
	tx := w.Db.Model(&schema.ApiKey{}).Where("id = ? AND status = ?", id, schema.KeyStatusActive)
	if limit >= 0 {
		tx = tx.Where("day_window_start <> ? OR requests_today < ?", today, limit)
	}
	res := tx.Updates(map[string]interface{}{
		"requests_today":   gorm.Expr("CASE WHEN day_window_start = ? THEN requests_today + 1 ELSE 1 END", today),
		"day_window_start": today,
		"last_used_at":     now,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// about holders

func (w *Wdb) UpsertHolders(holders []schema.Holder) error {
	if len(holders) == 0 {
		return nil
	}
	return w.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "percent", "holder_rank", "updated_at"}),
	}).Create(&holders).Error
}

func (w *Wdb) GetHolders(cursor int64, num int) ([]schema.Holder, error) {
	res := make([]schema.Holder, 0, num)
	err := w.Db.Where("id > ?", cursor).Order("id asc").Limit(num).Find(&res).Error
	return res, err
}

func (w *Wdb) GetHolder(address string) (res schema.Holder, err error) {
	err = w.Db.Where("address = ?", address).First(&res).Error
	return
}

func (w *Wdb) CountHolders() (total int64, err error) {
	err = w.Db.Model(&schema.Holder{}).Count(&total).Error
	return
}

func (w *Wdb) CountOgHolders() (total int64, err error) {
	err = w.Db.Model(&schema.Holder{}).Where("is_og = ?", true).Count(&total).Error
	return
}

func (w *Wdb) Top10Percent() (float64, error) {
	var share *float64
	err := w.Db.Model(&schema.Holder{}).Where("holder_rank <= ?", 10).
		Select("sum(percent)").Scan(&share).Error
	if err != nil || share == nil {
		return 0, err
	}
	return *share, nil
}

// RefreshHolderPercents recomputes every holder's share of the summed tracked
// balances; runs once after each full holder sync.
func (w *Wdb) RefreshHolderPercents() error {
	var total *float64
	err := w.Db.Model(&schema.Holder{}).Select("sum(balance)").Scan(&total).Error
	if err != nil {
		return err
	}
	if total == nil || *total <= 0 {
		return nil
	}
	return w.Db.Model(&schema.Holder{}).Where("balance >= ?", 0).
		Update("percent", gorm.Expr("balance * 100.0 / ?", *total)).Error
}

// MarkOgHolders flags holders that entered before cutoff and still hold at
// least floor tokens.
func (w *Wdb) MarkOgHolders(floor decimal.Decimal, cutoff time.Time) (int64, error) {
	res := w.Db.Model(&schema.Holder{}).
		Where("first_seen_at < ? AND balance >= ? AND is_og = ?", cutoff, floor, false).
		Update("is_og", true)
	return res.RowsAffected, res.Error
}

func (w *Wdb) GetOgHolders() ([]schema.Holder, error) {
	res := make([]schema.Holder, 0, 100)
	err := w.Db.Where("is_og = ?", true).Order("holder_rank asc").Find(&res).Error
	return res, err
}

// about swaps

func (w *Wdb) InsertSwaps(txs []schema.SwapTx) error {
	if len(txs) == 0 {
		return nil
	}
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&txs).Error
}

func (w *Wdb) GetSwaps(cursor int64, num int, side string) ([]schema.SwapTx, error) {
	res := make([]schema.SwapTx, 0, num)
	tx := w.Db.Order("id desc").Limit(num)
	if cursor > 0 {
		tx = tx.Where("id < ?", cursor)
	}
	if side != "" {
		tx = tx.Where("side = ?", side)
	}
	err := tx.Find(&res).Error
	return res, err
}

func (w *Wdb) GetSwapBySig(sig string) (res schema.SwapTx, err error) {
	err = w.Db.Where("sig = ?", sig).First(&res).Error
	return
}

func (w *Wdb) CountSwapsSince(side string, since int64) (total int64, err error) {
	err = w.Db.Model(&schema.SwapTx{}).Where("side = ? AND block_time >= ?", side, since).Count(&total).Error
	return
}

func (w *Wdb) SumSwapVolumeSince(since int64) (float64, error) {
	var vol *float64
	err := w.Db.Model(&schema.SwapTx{}).Where("block_time >= ?", since).
		Select("sum(amount_usd)").Scan(&vol).Error
	if err != nil || vol == nil {
		return 0, err
	}
	return *vol, nil
}

func (w *Wdb) LatestSwapBlockTime() (int64, error) {
	// Scan leaves the zero value on an empty table
	tx := schema.SwapTx{}
	err := w.Db.Model(&schema.SwapTx{}).Order("block_time desc").Limit(1).Scan(&tx).Error
	return tx.BlockTime, err
}

// about airdrops and og rewards

func (w *Wdb) InsertAirdrops(drops []schema.Airdrop) error {
	if len(drops) == 0 {
		return nil
	}
	return w.Db.Create(&drops).Error
}

func (w *Wdb) GetAirdrops(recipient string, round int, num int) ([]schema.Airdrop, error) {
	res := make([]schema.Airdrop, 0, num)
	tx := w.Db.Order("id desc").Limit(num)
	if recipient != "" {
		tx = tx.Where("recipient = ?", recipient)
	}
	if round > 0 {
		tx = tx.Where("round = ?", round)
	}
	err := tx.Find(&res).Error
	return res, err
}

func (w *Wdb) InsertOgRewards(rewards []schema.OgReward) error {
	if len(rewards) == 0 {
		return nil
	}
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rewards).Error
}

func (w *Wdb) GetOgRewards(round int, num int) ([]schema.OgReward, error) {
	res := make([]schema.OgReward, 0, num)
	tx := w.Db.Order("id desc").Limit(num)
	if round > 0 {
		tx = tx.Where("round = ?", round)
	}
	err := tx.Find(&res).Error
	return res, err
}

func (w *Wdb) GetOgRewardsByAddress(address string) ([]schema.OgReward, error) {
	res := make([]schema.OgReward, 0, 10)
	err := w.Db.Where("address = ?", address).Order("round desc").Find(&res).Error
	return res, err
}

func (w *Wdb) LatestRewardRound() (int, time.Time, error) {
	rwd := schema.OgReward{}
	err := w.Db.Model(&schema.OgReward{}).Order("round desc").Limit(1).Scan(&rwd).Error
	return rwd.Round, rwd.CreatedAt, err
}

// about market snapshots

func (w *Wdb) InsertSnapshot(sp *schema.MarketSnapshot) error {
	return w.Db.Create(sp).Error
}

func (w *Wdb) GetLatestSnapshot(source string) (res schema.MarketSnapshot, err error) {
	tx := w.Db.Order("id desc")
	if source != "" {
		tx = tx.Where("source = ?", source)
	}
	err = tx.First(&res).Error
	return
}

func (w *Wdb) GetSnapshots(num int) ([]schema.MarketSnapshot, error) {
	res := make([]schema.MarketSnapshot, 0, num)
	err := w.Db.Order("id desc").Limit(num).Find(&res).Error
	return res, err
}
