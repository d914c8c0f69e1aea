// poold: command-line host for the pool ledger program.
//
// It opens the account store, initializes pools and users, applies
// deposit/withdraw/query instructions, and saves or restores snapshots.
// Keys may be given as base58 pubkeys or as arbitrary seed strings, which
// are hashed into pubkeys.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fluxvm/pool-ledger/pkg/accounts"
	"github.com/fluxvm/pool-ledger/pkg/host"
	"github.com/fluxvm/pool-ledger/pkg/pool"
	"github.com/fluxvm/pool-ledger/pkg/snapshot"
	"github.com/fluxvm/pool-ledger/pkg/types"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "dev"
)

// Config holds file-based configuration. Flags override file values.
type Config struct {
	DataDir      string `json:"data_dir"`
	SnapshotPath string `json:"snapshot_path"`
}

var (
	configFile   = flag.String("config", "", "Path to JSON configuration file")
	dataDir      = flag.String("data-dir", "pool-data", "Data directory for the account store")
	op           = flag.String("op", "", "Operation: init, fund, deposit, withdraw, query, snapshot-save, snapshot-load")
	poolKey      = flag.String("pool", "main", "Pool state key (base58 pubkey or seed string)")
	userKey      = flag.String("user", "", "User key (base58 pubkey or seed string)")
	amount       = flag.Uint64("amount", 0, "Amount in lamports")
	snapshotPath = flag.String("snapshot", "", "Snapshot file path")
	showMetrics  = flag.Bool("metrics", false, "Print metrics after the operation")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveKey accepts a base58 pubkey, or any other string as a seed.
func resolveKey(s string) types.Pubkey {
	if pk, err := types.PubkeyFromBase58(s); err == nil {
		return pk
	}
	return types.PubkeyFromSeed(s)
}

// fundsKeyFor derives the funds-buffer key paired with a user key.
func fundsKeyFor(user types.Pubkey) types.Pubkey {
	return types.PubkeyFromSeed("funds/" + user.String())
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("poold %s (%s)\n", Version, GitCommit)
		return
	}
	if *op == "" {
		log.Fatal("missing -op; see -help")
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.DataDir != "" && !isFlagSet("data-dir") {
		*dataDir = cfg.DataDir
	}
	if cfg.SnapshotPath != "" && !isFlagSet("snapshot") {
		*snapshotPath = cfg.SnapshotPath
	}

	store, err := accounts.OpenBadgerStore(*dataDir)
	if err != nil {
		log.Fatalf("failed to open account store: %v", err)
	}
	defer store.Close()

	proc := host.NewProcessor(store)
	state := resolveKey(*poolKey)
	custody := types.PubkeyFromSeed("custody/" + state.String())

	if err := run(proc, store, state, custody); err != nil {
		log.Fatalf("%s failed: %v", *op, err)
	}

	if *showMetrics {
		fmt.Print(proc.Metrics().Registry.Gather())
	}
}

func run(proc *host.Processor, store accounts.Store, state, custody types.Pubkey) error {
	switch *op {
	case "init":
		if err := proc.CreatePool(state, custody); err != nil {
			return err
		}
		log.Printf("pool %s initialized (custody %s)", state.String(), custody.String())

	case "fund":
		user := requireUser()
		if err := proc.CreateUser(user, fundsKeyFor(user), *amount); err != nil {
			return err
		}
		log.Printf("user %s funded with %d", user.String(), *amount)

	case "deposit":
		user := requireUser()
		inst := pool.DepositInstruction{Amount: *amount}
		keys := []types.Pubkey{state, user, fundsKeyFor(user)}
		if err := proc.ProcessInstruction(keys, inst.Encode()); err != nil {
			return err
		}
		log.Printf("deposited %d for %s", *amount, user.String())

	case "withdraw":
		user := requireUser()
		inst := pool.WithdrawInstruction{Amount: *amount}
		keys := []types.Pubkey{state, user}
		if err := proc.ProcessInstruction(keys, inst.Encode()); err != nil {
			return err
		}
		log.Printf("withdrew %d for %s", *amount, user.String())

	case "query":
		user := requireUser()
		inst := pool.QueryBalanceInstruction{}
		keys := []types.Pubkey{state, user}
		if err := proc.ProcessInstruction(keys, inst.Encode()); err != nil {
			return err
		}
		// The program wrote the balance into the requester's data buffer.
		account, err := store.Get(user)
		if err != nil {
			return err
		}
		if account == nil || len(account.Data) < 8 {
			return fmt.Errorf("user account %s has no readable balance buffer", user.String())
		}
		fmt.Printf("%d\n", binary.LittleEndian.Uint64(account.Data[0:8]))

	case "snapshot-save":
		if *snapshotPath == "" {
			return fmt.Errorf("missing -snapshot path")
		}
		if err := snapshot.Save(*snapshotPath, store); err != nil {
			return err
		}
		log.Printf("snapshot saved to %s", *snapshotPath)

	case "snapshot-load":
		if *snapshotPath == "" {
			return fmt.Errorf("missing -snapshot path")
		}
		restored, err := snapshot.Load(*snapshotPath, store)
		if err != nil {
			return err
		}
		log.Printf("restored %d accounts from %s", restored, *snapshotPath)

	default:
		return fmt.Errorf("unknown operation %q", *op)
	}
	return nil
}

func requireUser() types.Pubkey {
	if *userKey == "" {
		log.Fatalf("operation %s requires -user", *op)
	}
	return resolveKey(*userKey)
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
