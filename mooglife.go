package mooglife

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/mooglife/mooglife/cache"
	"github.com/mooglife/mooglife/config"
)

type Mooglife struct {
	engine    *gin.Engine
	wdb       *Wdb
	store     *Store // raw upstream payload archive
	config    *config.Config
	gate      *Gate
	scheduler *gocron.Scheduler

	cache      *Cache       // latest token info, in process
	localCache *cache.Cache // short-lived response cache

	dexCli  *DexScreenerCli
	birdCli *BirdeyeCli

	kafka map[string]*KWriter // nil when kafka is disabled

	// token under tracking
	TokenSymbol string
	TokenMint   string
	PairAddress string
	Chain       string

	// when true every non-loopback request must present an api key
	KeyRequired bool
}

func New(
	mysqlDsn string, sqliteDir string, useSqlite bool,
	boltDirPath string,
	useS3 bool, s3AccKey, s3SecretKey, s3BucketPrefix, s3Region, s3Endpoint string,
	tokenSymbol, tokenMint, pairAddress, chain string,
	dexUrl, birdeyeUrl, birdeyeKey string,
	kafkaUri string, keyRequired bool,
) *Mooglife {
	var err error
	store := &Store{}
	if useS3 {
		store, err = NewS3Store(s3AccKey, s3SecretKey, s3Region, s3BucketPrefix, s3Endpoint)
	} else {
		store, err = NewBoltStore(boltDirPath)
	}
	if err != nil {
		panic(err)
	}

	var wdb *Wdb
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewMysqlDb(mysqlDsn)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}

	localCache, err := cache.NewLocalCache(time.Minute)
	if err != nil {
		panic(err)
	}

	cfg := config.New(mysqlDsn, sqliteDir, useSqlite)

	var kafka map[string]*KWriter
	if kafkaUri != "" {
		kafka, err = NewKWriters(kafkaUri)
		if err != nil {
			panic(err)
		}
	}

	m := &Mooglife{
		engine:      gin.Default(),
		wdb:         wdb,
		store:       store,
		config:      cfg,
		gate:        NewGate(wdb, cfg),
		scheduler:   gocron.NewScheduler(time.UTC),
		cache:       NewCache(tokenSymbol, tokenMint, pairAddress),
		localCache:  localCache,
		dexCli:      NewDexScreenerCli(dexUrl),
		birdCli:     NewBirdeyeCli(birdeyeUrl, birdeyeKey),
		kafka:       kafka,
		TokenSymbol: tokenSymbol,
		TokenMint:   tokenMint,
		PairAddress: pairAddress,
		Chain:       chain,
		KeyRequired: keyRequired,
	}

	// warm the info cache from the last persisted snapshot
	if sp, err := wdb.GetLatestSnapshot(""); err == nil {
		m.cache.UpdateMarket(&sp)
	}
	return m
}

func (m *Mooglife) Run(port string) {
	m.config.Run()
	go m.runAPI(port)
	go m.runJobs()
}

func (m *Mooglife) Close() {
	m.scheduler.Stop()
	m.config.Close()
	m.wdb.Close()
	m.store.Close()
	for _, kw := range m.kafka {
		kw.Close()
	}
}
