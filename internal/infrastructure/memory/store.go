package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

var errTxDone = errors.New("トランザクションは既に終了しています")

// Store はプロセス内で完結するストア
// トランザクションは同時に一つだけ開始でき、書き込みは全て直列化される
type Store struct {
	sem chan struct{}

	mu           sync.RWMutex
	reservations map[string]*storedReservation
	blocks       map[calendar.Date]block.DateBlock
	seq          uint64
}

type storedReservation struct {
	seq uint64
	res reservation.Reservation
}

// NewStore は空のストアを作成する
func NewStore() *Store {
	return &Store{
		sem:          make(chan struct{}, 1),
		reservations: make(map[string]*storedReservation),
		blocks:       make(map[calendar.Date]block.DateBlock),
	}
}

// Tx はメモリストアのトランザクション
// Rollback はこのトランザクション内の予約書き込みを取り消す
type Tx struct {
	store *Store
	once  sync.Once
	done  bool
	undo  []func()
}

func (t *Tx) Commit() error {
	return t.finish(false)
}

func (t *Tx) Rollback() error {
	return t.finish(true)
}

func (t *Tx) finish(rollback bool) error {
	err := errTxDone
	t.once.Do(func() {
		err = nil
		if rollback {
			t.store.mu.Lock()
			for i := len(t.undo) - 1; i >= 0; i-- {
				t.undo[i]()
			}
			t.store.mu.Unlock()
		}
		t.done = true
		t.undo = nil
		<-t.store.sem
	})
	return err
}

// record は mu を保持した状態で呼ぶ
func (t *Tx) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

// TxManager はメモリストアのトランザクションマネージャー
type TxManager struct{ store *Store }

// NewTxManager は新しい TxManager を作成する
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin は他のトランザクションが終わるまで待ってから開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	select {
	case m.store.sem <- struct{}{}:
		return &Tx{store: m.store}, nil
	case <-ctx.Done():
		return nil, transaction.Wrap("トランザクション開始に失敗", ctx.Err())
	}
}

// LockMonths はトランザクション自体が直列化されているため検証のみ行う
func (m *TxManager) LockMonths(_ context.Context, tx transaction.Tx, _ []string) error {
	if _, err := m.store.txOf(tx); err != nil {
		return err
	}
	return nil
}

// txOf は tx がこのストアの進行中トランザクションかを確認する（nil は許可）
func (s *Store) txOf(tx transaction.Tx) (*Tx, error) {
	if tx == nil {
		return nil, nil
	}
	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != s {
		return nil, errors.New("このストアのトランザクションではありません")
	}
	if mtx.done {
		return nil, errTxDone
	}
	return mtx, nil
}

var _ transaction.Manager = (*TxManager)(nil)
