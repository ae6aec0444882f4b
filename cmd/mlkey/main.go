package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mooglife/mooglife"
	"github.com/mooglife/mooglife/schema"
	"github.com/urfave/cli/v2"
)

// operator tool for issuing and revoking api keys without going through the
// admin http surface

func main() {
	dbFlags := []cli.Flag{
		&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/mooglife?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
		&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite db dir path", EnvVars: []string{"SQLITE_DIR"}},
		&cli.BoolFlag{Name: "use_sqlite", Value: false, EnvVars: []string{"USE_SQLITE"}},
	}

	app := &cli.App{
		Name: "mlkey",
		Commands: []*cli.Command{
			{
				Name: "create",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "label", Value: "generic-key", Usage: "description of the key"},
					&cli.StringFlag{Name: "owner", Value: ""},
					&cli.StringFlag{Name: "tier", Value: schema.TierFree, Usage: "free, pro or internal"},
					&cli.Int64Flag{Name: "daily_limit", Value: 0, Usage: "per-key override; 0 keeps the tier default, negative means unlimited"},
					&cli.StringFlag{Name: "allowed_ips", Value: "", Usage: "comma-separated allow-list"},
				}, dbFlags...),
				Action: createKey,
			},
			{
				Name:   "list",
				Flags:  dbFlags,
				Action: listKeys,
			},
			{
				Name: "disable",
				Flags: append([]cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
				}, dbFlags...),
				Action: disableKey,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func openWdb(c *cli.Context) *mooglife.Wdb {
	var wdb *mooglife.Wdb
	if c.Bool("use_sqlite") {
		wdb = mooglife.NewSqliteDb(c.String("sqlite_dir"))
	} else {
		wdb = mooglife.NewMysqlDb(c.String("mysql"))
	}
	if err := wdb.Migrate(); err != nil {
		log.Fatal(err)
	}
	return wdb
}

func createKey(c *cli.Context) error {
	tier := c.String("tier")
	switch tier {
	case schema.TierFree, schema.TierPro, schema.TierInternal:
	default:
		return fmt.Errorf("invalid tier: %s", tier)
	}

	wdb := openWdb(c)
	defer wdb.Close()

	token, err := mooglife.NewApiKeyToken()
	if err != nil {
		return err
	}
	key := &schema.ApiKey{
		Token:      token,
		Label:      c.String("label"),
		Owner:      c.String("owner"),
		Tier:       tier,
		Status:     schema.KeyStatusActive,
		AllowedIPs: c.String("allowed_ips"),
	}
	if dl := c.Int64("daily_limit"); dl != 0 {
		key.DailyLimit = &dl
	}
	if err := wdb.CreateApiKey(key); err != nil {
		return err
	}
	fmt.Printf("id: %d\ntoken: %s\ntier: %s\n", key.ID, token, key.Tier)
	return nil
}

func listKeys(c *cli.Context) error {
	wdb := openWdb(c)
	defer wdb.Close()

	keys, err := wdb.GetApiKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Printf("%d\t%s\t%s\t%s\t%d/%s\n", k.ID, k.Label, k.Tier, k.Status, k.RequestsToday, k.DayWindowStart)
	}
	return nil
}

func disableKey(c *cli.Context) error {
	wdb := openWdb(c)
	defer wdb.Close()

	id := c.Uint("id")
	if err := wdb.UpdateApiKeyStatus(uint(id), schema.KeyStatusDisabled); err != nil {
		return err
	}
	fmt.Printf("key %d disabled\n", id)
	return nil
}
