package mooglife

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mooglife/mooglife/schema"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
)

func (m *Mooglife) runJobs() {
	m.scheduler.Every(1).Minute().SingletonMode().Do(m.updateDexMarket)
	m.scheduler.Every(5).Minute().SingletonMode().Do(m.updateBirdeyeMarket)
	m.scheduler.Every(1).Minute().SingletonMode().Do(m.syncSwaps)
	m.scheduler.Every(10).Minute().SingletonMode().Do(m.syncHolders)
	m.scheduler.Every(1).Hour().SingletonMode().Do(m.accrueOgRewards)

	m.scheduler.StartAsync()
}

func (m *Mooglife) updateDexMarket() {
	sp, err := m.dexCli.GetPair(m.Chain, m.PairAddress)
	if err != nil {
		log.Error("m.dexCli.GetPair(chain, pairAddress)", "err", err, "pair", m.PairAddress)
		return
	}
	m.storeSnapshot(sp)
}

func (m *Mooglife) updateBirdeyeMarket() {
	sp, err := m.birdCli.GetPrice(m.TokenMint)
	if err != nil {
		log.Error("m.birdCli.GetPrice(mint)", "err", err, "mint", m.TokenMint)
		return
	}
	sp.PairAddress = m.PairAddress
	m.storeSnapshot(sp)
}

func (m *Mooglife) storeSnapshot(sp *schema.MarketSnapshot) {
	if err := m.wdb.InsertSnapshot(sp); err != nil {
		log.Error("m.wdb.InsertSnapshot(sp)", "err", err, "source", sp.Source)
		return
	}
	m.cache.UpdateMarket(sp)
	metricMarket(sp.Source, sp.PriceUsd, sp.LiquidityUsd)

	runId := uuid.NewString()
	if err := m.store.SaveRawPayload(sp.Source, runId, sp.Raw); err != nil {
		log.Error("m.store.SaveRawPayload(source, runId, raw)", "err", err, "runId", runId)
	}

	if kw, ok := m.kafka[SnapshotTopic]; ok {
		event := schema.KafkaSnapshotEvent{
			Source:       sp.Source,
			PairAddress:  sp.PairAddress,
			PriceUsd:     sp.PriceUsd,
			LiquidityUsd: sp.LiquidityUsd,
			Volume24h:    sp.Volume24h,
			Timestamp:    time.Now().Unix(),
		}
		by, _ := json.Marshal(event)
		if err := kw.Write(by); err != nil {
			log.Error("kafka write snapshot", "err", err)
		}
	}
}

func (m *Mooglife) syncSwaps() {
	pageSize := m.config.GetParam().SwapPageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	txs, err := m.birdCli.GetRecentSwaps(m.TokenMint, pageSize)
	if err != nil {
		log.Error("m.birdCli.GetRecentSwaps(mint, pageSize)", "err", err)
		return
	}

	lastSeen, err := m.wdb.LatestSwapBlockTime()
	if err != nil {
		log.Error("m.wdb.LatestSwapBlockTime()", "err", err)
		return
	}
	fresh := make([]schema.SwapTx, 0, len(txs))
	for _, tx := range txs {
		if tx.BlockTime > lastSeen {
			fresh = append(fresh, tx)
		}
	}
	if len(fresh) == 0 {
		return
	}
	if err = m.wdb.InsertSwaps(fresh); err != nil {
		log.Error("m.wdb.InsertSwaps(fresh)", "err", err, "num", len(fresh))
		return
	}
	log.Debug("synced swaps", "num", len(fresh))

	kw, ok := m.kafka[SwapTopic]
	if !ok {
		return
	}
	for _, tx := range fresh {
		event := schema.KafkaSwapEvent{
			Sig:       tx.Sig,
			BlockTime: tx.BlockTime,
			Side:      tx.Side,
			Maker:     tx.Maker,
			AmountTok: tx.AmountTok.String(),
			AmountUsd: tx.AmountUsd,
			PriceUsd:  tx.PriceUsd,
			Source:    tx.Source,
		}
		by, _ := json.Marshal(event)
		if err := kw.Write(by); err != nil {
			log.Error("kafka write swap", "err", err, "sig", tx.Sig)
		}
	}
}

func (m *Mooglife) syncHolders() {
	pageSize := m.config.GetParam().HolderPageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	// first page tells how deep to go; pages then fan out over the pool
	firstPage, err := m.birdCli.GetHolders(m.TokenMint, 0, pageSize)
	if err != nil {
		log.Error("m.birdCli.GetHolders(mint, 0, pageSize)", "err", err)
		return
	}
	if err = m.wdb.UpsertHolders(firstPage); err != nil {
		log.Error("m.wdb.UpsertHolders(firstPage)", "err", err)
		return
	}
	if len(firstPage) < pageSize {
		m.finishHolderSync()
		return
	}

	var wg sync.WaitGroup
	p, _ := ants.NewPoolWithFunc(5, func(i interface{}) {
		defer wg.Done()
		offset := i.(int)
		holders, err := m.birdCli.GetHolders(m.TokenMint, offset, pageSize)
		if err != nil {
			log.Error("m.birdCli.GetHolders(mint, offset, pageSize)", "err", err, "offset", offset)
			return
		}
		if err = m.wdb.UpsertHolders(holders); err != nil {
			log.Error("m.wdb.UpsertHolders(holders)", "err", err, "offset", offset)
		}
	})
	defer p.Release()

	const maxHolderPages = 50
	for page := 1; page < maxHolderPages; page++ {
		wg.Add(1)
		_ = p.Invoke(page * pageSize)
	}
	wg.Wait()
	m.finishHolderSync()
}

func (m *Mooglife) finishHolderSync() {
	if err := m.wdb.RefreshHolderPercents(); err != nil {
		log.Error("m.wdb.RefreshHolderPercents()", "err", err)
	}
	total, err := m.wdb.CountHolders()
	if err != nil {
		log.Error("m.wdb.CountHolders()", "err", err)
		return
	}
	metricHolderTotal(total)
	log.Debug("holder sync done", "total", total)
}

// accrueOgRewards flags OG holders and opens a new pending reward round for
// them. Rows are keyed by address+round so re-runs inside the same round are
// no-ops.
func (m *Mooglife) accrueOgRewards() {
	param := m.config.GetParam()
	if param.OgCutoff == 0 {
		return
	}
	floor, err := decimal.NewFromString(param.OgBalanceFloor)
	if err != nil {
		log.Error("decimal.NewFromString(param.OgBalanceFloor)", "err", err, "floor", param.OgBalanceFloor)
		return
	}
	marked, err := m.wdb.MarkOgHolders(floor, time.Unix(param.OgCutoff, 0))
	if err != nil {
		log.Error("m.wdb.MarkOgHolders(floor, cutoff)", "err", err)
		return
	}
	if marked > 0 {
		log.Info("marked og holders", "num", marked)
	}

	amount, err := decimal.NewFromString(param.RewardPerOg)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	lastRound, lastOpenedAt, err := m.wdb.LatestRewardRound()
	if err != nil {
		log.Error("m.wdb.LatestRewardRound()", "err", err)
		return
	}
	// one round per day at most
	if lastRound > 0 && time.Since(lastOpenedAt) < 24*time.Hour {
		return
	}
	ogs, err := m.wdb.GetOgHolders()
	if err != nil {
		log.Error("m.wdb.GetOgHolders()", "err", err)
		return
	}
	if len(ogs) == 0 {
		return
	}
	round := lastRound + 1
	rewards := make([]schema.OgReward, 0, len(ogs))
	for _, h := range ogs {
		rewards = append(rewards, schema.OgReward{
			Address: h.Address,
			Round:   round,
			Amount:  amount,
			Status:  schema.RewardPending,
		})
	}
	if err = m.wdb.InsertOgRewards(rewards); err != nil {
		log.Error("m.wdb.InsertOgRewards(rewards)", "err", err, "round", round)
		return
	}
	log.Info("og reward round opened", "round", round, "num", len(rewards))
}
