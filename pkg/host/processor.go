// Package host drives the pool ledger program against an account store.
//
// The host owns everything the program treats as external: loading the
// ordered account list, supplying the transfer primitive, and atomicity.
// All accounts an instruction touches - listed ones and any reached
// through transfers - are staged in memory and written back to the store
// only when the whole instruction succeeds; on any error nothing is
// committed.
package host

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fluxvm/pool-ledger/pkg/accounts"
	"github.com/fluxvm/pool-ledger/pkg/metrics"
	"github.com/fluxvm/pool-ledger/pkg/pool"
	"github.com/fluxvm/pool-ledger/pkg/runtime"
	"github.com/fluxvm/pool-ledger/pkg/types"
)

// Host errors
var (
	// ErrUnknownAccount indicates an instruction referenced an account
	// that does not exist in the store.
	ErrUnknownAccount = errors.New("unknown account")
)

// Metrics bundles the host's instruction counters.
type Metrics struct {
	Registry    *metrics.Registry
	Deposits    *metrics.Counter
	Withdrawals *metrics.Counter
	Queries     *metrics.Counter
	Failures    *metrics.Counter
}

// NewMetrics creates and registers the host metric set.
func NewMetrics() *Metrics {
	registry := metrics.NewRegistry()
	return &Metrics{
		Registry:    registry,
		Deposits:    registry.RegisterCounter("pool_deposits_total", "Successfully processed deposit instructions"),
		Withdrawals: registry.RegisterCounter("pool_withdrawals_total", "Successfully processed withdraw instructions"),
		Queries:     registry.RegisterCounter("pool_queries_total", "Successfully processed balance query instructions"),
		Failures:    registry.RegisterCounter("pool_failures_total", "Instructions aborted by an error"),
	}
}

// Processor executes pool program instructions against a store.
type Processor struct {
	store   accounts.Store
	program *pool.PoolProgram
	metrics *Metrics
}

// NewProcessor creates a processor over the given store.
func NewProcessor(store accounts.Store) *Processor {
	return &Processor{
		store:   store,
		program: pool.New(),
		metrics: NewMetrics(),
	}
}

// Metrics returns the processor's metric set.
func (p *Processor) Metrics() *Metrics {
	return p.metrics
}

// stagedAccount is an account loaded into an instruction's staging area.
// Lamports live here so the runtime context and the transfer primitive
// mutate the same storage.
type stagedAccount struct {
	lamports uint64
	data     []byte
	owner    types.Pubkey
}

// session stages every account an instruction touches.
type session struct {
	store  accounts.Store
	staged map[types.Pubkey]*stagedAccount
	order  []types.Pubkey
}

func newSession(store accounts.Store) *session {
	return &session{
		store:  store,
		staged: make(map[types.Pubkey]*stagedAccount),
	}
}

// load fetches an account into the staging area, reusing an already staged
// copy so repeated references observe each other's mutations.
func (s *session) load(pubkey types.Pubkey) (*stagedAccount, error) {
	if sa, ok := s.staged[pubkey]; ok {
		return sa, nil
	}
	account, err := s.store.Get(pubkey)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, pubkey.String())
	}
	sa := &stagedAccount{
		lamports: uint64(account.Lamports),
		data:     account.Data,
		owner:    account.Owner,
	}
	s.staged[pubkey] = sa
	s.order = append(s.order, pubkey)
	return sa, nil
}

// transfer is the transfer primitive handed to the program. It moves
// lamports inside the staging area, pulling the custody account in on
// demand.
func (s *session) transfer(source, destination types.Pubkey, amount uint64) error {
	src, err := s.load(source)
	if err != nil {
		return err
	}
	dst, err := s.load(destination)
	if err != nil {
		return err
	}
	if src.lamports < amount {
		return fmt.Errorf("%w: %s has %d, need %d",
			runtime.ErrInsufficientLamports, source.String(), src.lamports, amount)
	}
	src.lamports -= amount
	dst.lamports += amount
	return nil
}

// commit writes every staged account back to the store in load order.
func (s *session) commit() error {
	for _, pubkey := range s.order {
		sa := s.staged[pubkey]
		account := &types.Account{
			Lamports: types.Lamports(sa.lamports),
			Data:     sa.data,
			Owner:    sa.owner,
		}
		if err := s.store.Put(pubkey, account); err != nil {
			return fmt.Errorf("failed to commit account %s: %w", pubkey.String(), err)
		}
	}
	return nil
}

// ProcessInstruction loads the listed accounts in order, executes the pool
// program, and commits all touched accounts only when execution succeeds.
func (p *Processor) ProcessInstruction(keys []types.Pubkey, data []byte) error {
	sess := newSession(p.store)

	infos := make([]*runtime.AccountInfo, 0, len(keys))
	for _, key := range keys {
		sa, err := sess.load(key)
		if err != nil {
			p.metrics.Failures.Inc()
			return err
		}
		infos = append(infos, &runtime.AccountInfo{
			Pubkey:     key,
			Lamports:   &sa.lamports,
			Data:       sa.data,
			Owner:      sa.owner,
			IsWritable: true,
		})
	}

	ctx := runtime.NewExecutionContext(p.program.ProgramID, infos, data)
	ctx.SetTransferFunc(sess.transfer)

	if err := p.program.Execute(ctx, data); err != nil {
		p.metrics.Failures.Inc()
		return err
	}

	// The program may have replaced a listed account's data buffer; fold
	// those back into the staging area before committing.
	for _, info := range infos {
		sess.staged[info.Pubkey].data = info.Data
	}
	if err := sess.commit(); err != nil {
		return err
	}

	switch data[0] {
	case pool.InstructionDeposit:
		p.metrics.Deposits.Inc()
	case pool.InstructionWithdraw:
		p.metrics.Withdrawals.Inc()
	case pool.InstructionQueryBalance:
		p.metrics.Queries.Inc()
	}
	return nil
}

// CreatePool writes an empty pool state account and its custody account.
// Pool creation is host tooling, not a program instruction.
func (p *Processor) CreatePool(stateKey, custodyKey types.Pubkey) error {
	state := pool.NewPoolState(types.PoolProgramID, custodyKey)
	stateAccount := types.NewAccountWithData(0, state.Serialize(), types.PoolProgramID)
	if err := p.store.Put(stateKey, stateAccount); err != nil {
		return fmt.Errorf("failed to create pool state account: %w", err)
	}
	custodyAccount := types.NewAccount(0, types.SystemProgramID)
	if err := p.store.Put(custodyKey, custodyAccount); err != nil {
		return fmt.Errorf("failed to create custody account: %w", err)
	}
	return nil
}

// CreateUser writes a user account with an 8-byte scratch data buffer
// (queries write the balance there) and a funds account whose first 8
// bytes advertise the available balance, holding the same amount in
// lamports.
func (p *Processor) CreateUser(userKey, fundsKey types.Pubkey, funding uint64) error {
	userAccount := types.NewAccountWithData(types.Lamports(funding), make([]byte, 8), types.SystemProgramID)
	if err := p.store.Put(userKey, userAccount); err != nil {
		return fmt.Errorf("failed to create user account: %w", err)
	}

	fundsData := make([]byte, 8)
	binary.LittleEndian.PutUint64(fundsData, funding)
	fundsAccount := types.NewAccountWithData(0, fundsData, types.SystemProgramID)
	if err := p.store.Put(fundsKey, fundsAccount); err != nil {
		return fmt.Errorf("failed to create funds account: %w", err)
	}
	return nil
}
