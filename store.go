package mooglife

import (
	"fmt"
	"time"

	"github.com/mooglife/mooglife/rawdb"
	"github.com/mooglife/mooglife/schema"
)

// Store archives the raw upstream payloads each sync run received, so a bad
// parse can be replayed later.
type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	boltDb, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	log.Info("run with bolt store")
	return &Store{KVDb: boltDb}, nil
}

func NewS3Store(accKey, secretKey, region, bucketPrefix, endpoint string) (*Store, error) {
	s3Db, err := rawdb.NewS3DB(accKey, secretKey, region, bucketPrefix, endpoint)
	if err != nil {
		return nil, err
	}
	log.Info("run with s3 store")
	return &Store{KVDb: s3Db}, nil
}

func (s *Store) SaveRawPayload(source, runId string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	key := fmt.Sprintf("%s_%s", time.Now().UTC().Format(time.RFC3339), runId)
	return s.KVDb.Put(bucketForSource(source), key, payload)
}

func (s *Store) LoadRawPayload(source, key string) ([]byte, error) {
	return s.KVDb.Get(bucketForSource(source), key)
}

func (s *Store) RawPayloadKeys(source string) ([]string, error) {
	return s.KVDb.GetAllKey(bucketForSource(source))
}

func (s *Store) Close() error {
	if s.KVDb == nil {
		return nil
	}
	return s.KVDb.Close()
}

func bucketForSource(source string) string {
	if source == schema.SourceBirdeye {
		return schema.RawBirdeyeBucket
	}
	return schema.RawDexScreenerBucket
}
