package tx

import (
	"errors"
	"sort"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
	ed25519algo "github.com/LeJamon/goEscrowd/internal/crypto/algorithms/ed25519"
)

// memView is a map backed LedgerView.
type memView struct {
	entries map[[32]byte][]byte
	batches int
}

func newMemView() *memView {
	return &memView{entries: make(map[[32]byte][]byte)}
}

func (v *memView) Read(k keylet.Keylet) ([]byte, error) {
	return v.entries[k.Key], nil
}

func (v *memView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *memView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; ok {
		return ErrEntryExists
	}
	v.entries[k.Key] = data
	return nil
}

func (v *memView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	v.entries[k.Key] = data
	return nil
}

func (v *memView) Erase(k keylet.Keylet) error {
	if _, ok := v.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	delete(v.entries, k.Key)
	return nil
}

func (v *memView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	keys := make([][32]byte, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return string(keys[i][:]) < string(keys[j][:]) })
	for _, k := range keys {
		if !fn(k, v.entries[k]) {
			return nil
		}
	}
	return nil
}

// batchView counts WriteBatch calls and can be made to fail them.
type batchView struct {
	*memView
	failWith error
}

func (v *batchView) WriteBatch(changes []Change) error {
	if v.failWith != nil {
		return v.failWith
	}
	v.batches++
	for _, c := range changes {
		if c.Delete {
			delete(v.entries, c.Key)
			continue
		}
		v.entries[c.Key] = c.Data
	}
	return nil
}

// stampTx writes a mint entry at Mint and then returns Fail, if set.
type stampTx struct {
	BaseTx
	Mint string `json:"Mint"`
	Fail error  `json:"-"`
}

func newStampTx(account string, mint [32]byte) *stampTx {
	return &stampTx{
		BaseTx: *NewBaseTx(TypeMintCreate, account),
		Mint:   addresscodec.EncodeAddress(mint),
	}
}

func (s *stampTx) TxType() Type { return TypeMintCreate }

func (s *stampTx) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(s.Mint) {
		return errors.New("bad mint")
	}
	return nil
}

func (s *stampTx) Apply(ctx *ApplyContext) error {
	mint := addresscodec.MustDecodeAddress(s.Mint)
	data := sle.SerializeMint(&sle.Mint{Authority: ctx.AccountID, Decimals: 6})
	if err := ctx.View.Insert(keylet.Mint(mint), data); err != nil {
		return err
	}
	return s.Fail
}

func testKeypair(name string) *ed25519algo.Keypair {
	kp, err := ed25519algo.NewED25519Provider().GenerateKeypair([]byte(name))
	if err != nil {
		panic(err)
	}
	return kp
}

func testAddress(kp *ed25519algo.Keypair) string {
	return addresscodec.EncodeAddress(kp.PublicKey)
}
