package config

func (c *Config) runJobs() {
	c.scheduler.Every(1).Minute().SingletonMode().Do(c.updateTierQuotas)
	c.scheduler.Every(1).Minute().SingletonMode().Do(c.updateIPWhiteList)
	c.scheduler.Every(10).Seconds().SingletonMode().Do(c.updateParam)

	c.scheduler.StartAsync()
}

func (c *Config) updateTierQuotas() {
	quotas, err := c.wdb.GetAllAvailableTierQuotas()
	if err != nil {
		return
	}
	tierLimits := make(map[string]int64, len(quotas))
	rowCaps := make(map[string]int, len(quotas))
	for _, q := range quotas {
		tierLimits[q.Tier] = q.DailyLimit
		if q.RowCap > 0 {
			rowCaps[q.Tier] = q.RowCap
		}
	}
	c.lock.Lock()
	c.tierLimits = tierLimits
	c.rowCaps = rowCaps
	c.lock.Unlock()
}

func (c *Config) updateIPWhiteList() {
	ips, err := c.wdb.GetAllAvailableIpRateWhitelist()
	if err != nil {
		return
	}
	ipWhiteList := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		if ip.Available {
			ipWhiteList[ip.OriginOrIP] = struct{}{}
		}
	}
	c.lock.Lock()
	c.ipWhiteList = ipWhiteList
	c.lock.Unlock()
}

func (c *Config) updateParam() {
	param, err := c.wdb.GetParam()
	if err != nil {
		return
	}
	c.lock.Lock()
	c.param = param
	c.lock.Unlock()
}
