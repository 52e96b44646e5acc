package main

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Local Packages
	api "tanda-go/api"
	config "tanda-go/config"
	gateway "tanda-go/gateway"
	helpers "tanda-go/helpers"
	kafka "tanda-go/kafka"
	gormdb "tanda-go/repositories/gormdb"
	memory "tanda-go/repositories/memory"
	mongodb "tanda-go/repositories/mongodb"
	redis "tanda-go/repositories/redis"
	processors "tanda-go/services/processors"
	tanda "tanda-go/tanda"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

var (
	app        = kingpin.New("tanda", "Tanda payments gateway")
	configPath = app.Flag("config", "Path to the application config file").Short('c').Default("config.yml").String()

	serveCmd = app.Command("serve", "Serve result callbacks over HTTP and, when enabled, from kafka")

	b2cMobileCmd      = app.Command("b2c-mobile", "Pay out to a mobile money account")
	b2cMobileWallet   = b2cMobileCmd.Flag("wallet", "Merchant wallet").Required().String()
	b2cMobileProvider = b2cMobileCmd.Flag("provider", "Service provider, classified from the number when empty").String()
	b2cMobileAmount   = b2cMobileCmd.Flag("amount", "Amount").Required().String()
	b2cMobileNumber   = b2cMobileCmd.Flag("mobile", "Mobile number").Required().String()

	b2cBankCmd     = app.Command("b2c-bank", "Pay out to a bank account over Pesalink")
	b2cBankWallet  = b2cBankCmd.Flag("wallet", "Merchant wallet").Required().String()
	b2cBankCode    = b2cBankCmd.Flag("bank-code", "Bank code").Required().String()
	b2cBankAmount  = b2cBankCmd.Flag("amount", "Amount").Required().String()
	b2cBankName    = b2cBankCmd.Flag("account-name", "Account name").Required().String()
	b2cBankAccount = b2cBankCmd.Flag("account", "Account number").Required().String()

	buyGoodsCmd    = app.Command("b2b-buygoods", "Pay a till number")
	buyGoodsWallet = buyGoodsCmd.Flag("wallet", "Merchant wallet").Required().String()
	buyGoodsAmount = buyGoodsCmd.Flag("amount", "Amount").Required().String()
	buyGoodsTill   = buyGoodsCmd.Flag("till", "Till number").Required().String()

	paybillCmd     = app.Command("b2b-paybill", "Pay a paybill number")
	paybillWallet  = paybillCmd.Flag("wallet", "Merchant wallet").Required().String()
	paybillAmount  = paybillCmd.Flag("amount", "Amount").Required().String()
	paybillNumber  = paybillCmd.Flag("paybill", "Paybill number").Required().String()
	paybillAccount = paybillCmd.Flag("account", "Account reference").Required().String()

	c2bCmd      = app.Command("c2b", "Request a payment from a customer")
	c2bProvider = c2bCmd.Flag("provider", "Service provider, classified from the number when empty").String()
	c2bWallet   = c2bCmd.Flag("wallet", "Merchant wallet").Required().String()
	c2bNumber   = c2bCmd.Flag("mobile", "Mobile number").Required().String()
	c2bAmount   = c2bCmd.Flag("amount", "Amount").Required().String()

	p2pCmd      = app.Command("p2p", "Transfer between Tanda wallets")
	p2pSender   = p2pCmd.Flag("from", "Sender wallet").Required().String()
	p2pReceiver = p2pCmd.Flag("to", "Receiver wallet").Required().String()
	p2pAmount   = p2pCmd.Flag("amount", "Amount").Required().String()

	statusCmd       = app.Command("status", "Refresh a stored record from Tanda")
	statusReference = statusCmd.Arg("reference", "Record reference").Required().String()
	statusFunding   = statusCmd.Flag("funding", "Reference belongs to a funding").Bool()

	classifyCmd     = app.Command("classify", "Print the provider of a mobile number")
	classifyNumber  = classifyCmd.Arg("mobile", "Mobile number").Required().String()
	classifyAirtime = classifyCmd.Flag("airtime", "Use airtime provider names").Bool()
)

// LoadConfig loads the default configuration and overrides it with the config file
func LoadConfig(path string) *koanf.Koanf {
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if path != "" {
		_ = k.Load(file.Provider(path), yaml.Parser())
	}
	return k
}

func newLogger(k *koanf.Koanf, appKonf config.Config) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	return logger
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == classifyCmd.FullCommand() {
		fmt.Println(helpers.ServiceProvider(*classifyNumber, *classifyAirtime))
		return
	}

	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	k := LoadConfig(*configPath)
	appKonf := config.Config{}
	if err := k.Unmarshal("", &appKonf); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	appKonf = config.LoadSecrets(appKonf)

	if err := appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	logger := newLogger(k, appKonf)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, appKonf)
	if err != nil {
		logger.Fatal("cannot open record store", zap.String("driver", appKonf.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	var redisClient *goredis.Client
	var tokenCache tanda.TokenCache = memory.NewTokenCache()
	if appKonf.Redis.URI != "" {
		redisClient, err = redis.Connect(ctx, appKonf.Redis)
		if err != nil {
			logger.Fatal("cannot create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		tokenCache = redis.NewTokenCache(redisClient)
	}

	client, err := tanda.NewClient(appKonf.Tanda, tokenCache, logger, tanda.WithBreaker(appKonf.Breaker))
	if err != nil {
		logger.Fatal("cannot create tanda client", zap.Error(err))
	}
	g := gateway.New(appKonf.Tanda, client, store, logger)

	switch command {
	case serveCmd.FullCommand():
		if err := serve(ctx, appKonf, g, redisClient, logger); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
		return
	case statusCmd.FullCommand():
		if *statusFunding {
			printRecord(g.Status().FundingCheck(ctx, *statusReference))
		} else {
			printRecord(g.Status().PaymentCheck(ctx, *statusReference))
		}
		return
	}

	printRecord(initiate(ctx, command, g))
}

func initiate(ctx context.Context, command string, g *gateway.Gateway) (any, error) {
	switch command {
	case b2cMobileCmd.FullCommand():
		provider := *b2cMobileProvider
		if provider == "" {
			provider = g.ServiceProvider(*b2cMobileNumber, false)
		}
		return g.B2C().Mobile(ctx, *b2cMobileWallet, provider, *b2cMobileAmount, *b2cMobileNumber)
	case b2cBankCmd.FullCommand():
		return g.B2C().Bank(ctx, *b2cBankWallet, *b2cBankCode, *b2cBankAmount, *b2cBankName, *b2cBankAccount)
	case buyGoodsCmd.FullCommand():
		return g.B2B().BuyGoods(ctx, *buyGoodsWallet, *buyGoodsAmount, *buyGoodsTill)
	case paybillCmd.FullCommand():
		return g.B2B().Paybill(ctx, *paybillWallet, *paybillAmount, *paybillNumber, *paybillAccount)
	case c2bCmd.FullCommand():
		provider := *c2bProvider
		if provider == "" {
			provider = g.ServiceProvider(*c2bNumber, false)
		}
		return g.C2B().Request(ctx, provider, *c2bWallet, *c2bNumber, *c2bAmount)
	case p2pCmd.FullCommand():
		return g.P2P().Send(ctx, *p2pSender, *p2pReceiver, *p2pAmount)
	}
	return nil, fmt.Errorf("unknown command %q", command)
}

func printRecord(record any, err error) {
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	if err := helpers.PrintStruct(os.Stdout, record); err != nil {
		log.Fatalf("cannot print record: %v", err)
	}
}

// openStore returns the configured record store and its cleanup.
func openStore(ctx context.Context, appKonf config.Config) (gateway.Store, func(), error) {
	switch appKonf.Store.Driver {
	case config.StoreMemory:
		return memory.NewStore(), func() {}, nil
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, appKonf.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		repo := mongodb.NewRecordsRepository(client, appKonf.Mongo.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		db, err := gormdb.Connect(appKonf.Store.SQLitePath, !appKonf.IsProdMode)
		if err != nil {
			return nil, nil, err
		}
		return gormdb.NewRecordsRepository(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	}
}

func serve(ctx context.Context, appKonf config.Config, g *gateway.Gateway, redisClient *goredis.Client, logger *zap.Logger) error {
	registry := prometheus.NewRegistry()
	handler := api.NewHandler(g.Results(), logger, registry)

	mux := http.NewServeMux()
	mux.Handle("/", handler.Routes(appKonf.Tanda))

	errCh := make(chan error, 2)
	if appKonf.Kafka.Consume {
		metrics := kprom.NewMetrics("tanda")
		mux.Handle("/metrics/kafka", metrics.Handler())

		var dlq processors.DeadLetterQueue
		if redisClient != nil {
			dlq = redis.NewDeadLetterQueue(redisClient, logger)
		}
		processor := processors.NewCallbackProcessor(logger, g.Results(), dlq)
		consumer, err := kafka.NewCallbackConsumer(&kafka.ConsumerConfig{
			Brokers:        appKonf.Kafka.Brokers,
			Name:           appKonf.Kafka.ConsumerName,
			Topic:          appKonf.Kafka.Topic,
			RecordsPerPoll: appKonf.Kafka.RecordsPerPoll,
			RetryBackoff:   appKonf.Kafka.RetryBackoff,
		}, processor, metrics, logger)
		if err != nil {
			return fmt.Errorf("cannot create callback consumer: %w", err)
		}
		go func() {
			if err := consumer.Poll(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("cannot poll callbacks: %w", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              appKonf.HTTP.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("callback server listening", zap.String("address", server.Addr),
			zap.String("payout_url", appKonf.Tanda.PaymentResultURL()),
			zap.String("c2b_url", appKonf.Tanda.FundingResultURL()))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
