package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mooglife/mooglife"
	"github.com/mooglife/mooglife/common"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name: "mooglife",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/mooglife?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
			&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite db dir path", EnvVars: []string{"SQLITE_DIR"}},
			&cli.BoolFlag{Name: "use_sqlite", Value: false, Usage: "run with sqlite instead of mysql", EnvVars: []string{"USE_SQLITE"}},
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},

			&cli.BoolFlag{Name: "s3_flag", Value: false, Usage: "archive raw payloads to s3", EnvVars: []string{"S3_FLAG"}},
			&cli.StringFlag{Name: "s3_acc_key", Value: "", Usage: "s3 access key", EnvVars: []string{"S3_ACC_KEY"}},
			&cli.StringFlag{Name: "s3_secret_key", Value: "", Usage: "s3 secret key", EnvVars: []string{"S3_SECRET_KEY"}},
			&cli.StringFlag{Name: "s3_prefix", Value: "mooglife", Usage: "s3 bucket name prefix", EnvVars: []string{"S3_PREFIX"}},
			&cli.StringFlag{Name: "s3_region", Value: "ap-northeast-1", Usage: "s3 bucket region", EnvVars: []string{"S3_REGION"}},
			&cli.StringFlag{Name: "s3_endpoint", Value: "", Usage: "s3 compatible endpoint", EnvVars: []string{"S3_ENDPOINT"}},

			&cli.StringFlag{Name: "token_symbol", Value: "MOOG", EnvVars: []string{"TOKEN_SYMBOL"}},
			&cli.StringFlag{Name: "token_mint", Value: "", Usage: "token mint address", EnvVars: []string{"TOKEN_MINT"}},
			&cli.StringFlag{Name: "pair_address", Value: "", Usage: "dex pair address", EnvVars: []string{"PAIR_ADDRESS"}},
			&cli.StringFlag{Name: "chain", Value: "solana", EnvVars: []string{"CHAIN"}},

			&cli.StringFlag{Name: "dex_url", Value: "https://api.dexscreener.com", EnvVars: []string{"DEX_URL"}},
			&cli.StringFlag{Name: "birdeye_url", Value: "https://public-api.birdeye.so", EnvVars: []string{"BIRDEYE_URL"}},
			&cli.StringFlag{Name: "birdeye_key", Value: "", Usage: "birdeye api key", EnvVars: []string{"BIRDEYE_KEY"}},

			&cli.StringFlag{Name: "kafka_uri", Value: "", Usage: "kafka broker, empty disables publishing", EnvVars: []string{"KAFKA_URI"}},
			&cli.BoolFlag{Name: "key_required", Value: false, Usage: "require an api key from non-loopback clients", EnvVars: []string{"KEY_REQUIRED"}},
			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	common.NewMetricServer()

	m := mooglife.New(
		c.String("mysql"), c.String("sqlite_dir"), c.Bool("use_sqlite"),
		c.String("db_dir"),
		c.Bool("s3_flag"), c.String("s3_acc_key"), c.String("s3_secret_key"), c.String("s3_prefix"), c.String("s3_region"), c.String("s3_endpoint"),
		c.String("token_symbol"), c.String("token_mint"), c.String("pair_address"), c.String("chain"),
		c.String("dex_url"), c.String("birdeye_url"), c.String("birdeye_key"),
		c.String("kafka_uri"), c.Bool("key_required"),
	)
	m.Run(c.String("port"))

	<-signals
	m.Close()

	return nil
}
