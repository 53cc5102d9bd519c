package main

import (
	"os"

	"github.com/aragon/cellvote/ledger"
	"github.com/aragon/cellvote/molecule"
	"github.com/aragon/cellvote/validator"
	flag "github.com/spf13/pflag"
	"go.vocdoni.io/dvote/log"
)

// Config contains the configuration parameters of the validator
type Config struct {
	txPath, logLevel, encoding string
	cacheSize                  int
}

func main() {
	config := Config{}

	flag.StringVarP(&config.txPath, "tx", "t", "", "path of the JSON transaction to validate")
	flag.StringVarP(&config.logLevel, "logLevel", "l", "info", "log level (info, debug, warn, error)")
	flag.StringVarP(&config.encoding, "encoding", "e", "single",
		"encoding of the votes (single, bitmask)")
	flag.IntVarP(&config.cacheSize, "cache", "c", molecule.DefaultCacheSize,
		"size in bytes of the read window of the record decoders")

	flag.CommandLine.SortFlags = false
	flag.Parse()

	log.Init(config.logLevel, "stdout")

	log.Debugf("Config: %#v\n", config)

	if config.txPath == "" {
		log.Fatal("tx flag can not be empty")
	}
	encoding, err := validator.ParseEncoding(config.encoding)
	if err != nil {
		log.Fatal(err)
	}
	tx, err := ledger.LoadFixture(config.txPath)
	if err != nil {
		log.Fatal(err)
	}

	err = validator.Validate(tx, validator.Options{
		Encoding:  encoding,
		CacheSize: config.cacheSize,
	})
	code := validator.ExitCode(err)
	if err != nil {
		log.Warnw("transaction rejected", "tx", config.txPath, "code", code, "err", err)
	} else {
		log.Infof("transaction %s is valid", config.txPath)
	}
	os.Exit(int(code))
}
