package bank

import (
	"github.com/jinzhu/configor"
)

type Config struct {
	SatBank struct {
		// key for which Bitcoind struct to use
		Bitcoind string `default:"testnet" required:"true"`
		// chain network for address decoding: mainnet, testnet, regtest
		Network string `default:"testnet"`
		// block confirmations before a deposit is credited
		ConfirmationsNeeded int64 `default:"2"`
		// hours an account must exist before it may withdraw on-chain
		WithdrawalMinAgeHours int `default:"48"`
		// how many recent wallet transactions to scan per listing
		LookBackCount int `default:"1000"`
		// seconds an operation waits for the per-account lock
		LockTimeoutSeconds int `default:"30"`
		// fixed fiat rate used for ledger metadata (sats -> fiat);
		// a real deployment injects a live RateSource instead
		FiatPerBTC string `default:"0"`
	}

	// info for connecting to bitcoind daemons
	Bitcoind map[string]struct {
		Host    string `default:"localhost"`
		RPCPort int    `default:"18332"`
		RPCUser string `default:"satbank"`
		RPCPass string `default:"satbank"`
		ZMQPort int    `default:"28332"`
	}

	// per-tier daily caps in satoshis, keyed by Account.Level as a string
	Limits struct {
		OnUs       map[string]int64
		Withdrawal map[string]int64
	}

	Store struct {
		DBFile string `default:"satbank.db"`
	}

	WebAPI struct {
		AdminBind string `default:"localhost"`
		AdminPort string `default:"8081"`
		PubBind   string `default:"localhost"`
		PubPort   string `default:"8080"`
	}

	// deposit sweeper schedule (seconds between full reconcile passes)
	Sweeper struct {
		IntervalSeconds int `default:"60"`
	}

	Loggers map[string]struct {
		Path  string
		Types []string
	}

	Callbacks map[string]CallbackConfig
}

type CallbackConfig struct {
	Path       string
	HMACSecret string
	Types      []string
}

func LoadConfig(confPath string) Config {
	c := Config{}
	configor.Load(&c, confPath)
	return c
}
