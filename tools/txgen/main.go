// Transaction File Generator
//
// This tool generates a random transaction CSV for performance testing and
// profiling. Client ids, transaction kinds and amounts follow Pareto
// distributions, so low client ids see more traffic, deposits and withdrawals
// dominate and small amounts are common. Disputes reference the client's
// latest deposit; resolves and chargebacks reference an open dispute.
//
// Usage:
//
//	go run ./tools/txgen 1000000 > transactions.csv
//	go run ./tools/txgen --seed 7 --output transactions.csv 20000
package main

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/simledger/ledger"
)

const (
	clientAlpha = 4.0  // favours low client ids
	kindAlpha   = 2.0  // favours deposits and withdrawals
	amountAlpha = 15.0 // favours small amounts

	// amountMax is the largest generated amount in ledger units.
	amountMax = 1_000_000
)

var kinds = []ledger.TagKind{
	ledger.Deposit,
	ledger.Withdrawal,
	ledger.Dispute,
	ledger.Resolve,
	ledger.Chargeback,
}

var cli struct {
	Lines  int    `help:"Number of transactions to generate." arg:"" optional:"" default:"100000"`
	Output string `help:"Output file (defaults to stdout)." short:"o" type:"path"`
	Seed   int64  `help:"Random seed (defaults to the current time)."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("txgen"),
		kong.Description("Generate a random transaction CSV for simledger."),
	)

	var w io.Writer = os.Stdout
	if cli.Output != "" {
		f, err := os.Create(cli.Output)
		ctx.FatalIfErrorf(err)
		defer func() { _ = f.Close() }()
		w = f
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := newGenerator(rand.New(rand.NewSource(seed)), cli.Lines)
	ctx.FatalIfErrorf(g.write(w))
}

type deposit struct {
	id     uint32
	amount ledger.Amount
}

type generator struct {
	rand     *rand.Rand
	lines    int
	deposits map[uint16]deposit
	disputed map[uint16][]uint32
}

func newGenerator(r *rand.Rand, lines int) *generator {
	return &generator{
		rand:     r,
		lines:    lines,
		deposits: make(map[uint16]deposit),
		disputed: make(map[uint16][]uint32),
	}
}

// pareto draws from a Pareto distribution with scale 1 and projects it
// onto [0, n).
func (g *generator) pareto(alpha float64, n int) int {
	v := int(float64(n) * (1 - math.Pow(1-g.rand.Float64(), 1/alpha)))
	if v >= n {
		v = n - 1
	}
	return v
}

func (g *generator) write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "client", "tx", "amount"}); err != nil {
		return err
	}

	for i := 0; i < g.lines; {
		tx, ok := g.next(uint32(i))
		if !ok {
			continue
		}
		i++

		amount := ""
		if tx.Tag.IsBalanceFlow() {
			amount = tx.Tag.Amount.String()
		}
		record := []string{
			tx.Tag.Kind.String(),
			strconv.FormatUint(uint64(tx.ClientID), 10),
			strconv.FormatUint(uint64(tx.ID), 10),
			amount,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// next draws the transaction for line id. It reports false when the drawn
// kind needs a prior transaction the client does not have.
func (g *generator) next(id uint32) (ledger.Transaction, bool) {
	client := uint16(g.pareto(clientAlpha, maxInt(g.lines, 1)) % math.MaxUint16)
	kind := kinds[g.pareto(kindAlpha, len(kinds))]

	switch kind {
	case ledger.Deposit:
		amount := ledger.Amount(g.pareto(amountAlpha, amountMax) + 1)
		g.deposits[client] = deposit{id: id, amount: amount}
		return ledger.Transaction{ID: id, ClientID: client, Tag: ledger.DepositTag(amount)}, true

	case ledger.Withdrawal:
		last, ok := g.deposits[client]
		if !ok {
			return ledger.Transaction{}, false
		}
		amount := ledger.Amount(g.pareto(amountAlpha, amountMax)) % last.amount
		if amount == 0 {
			amount = last.amount
		}
		return ledger.Transaction{ID: id, ClientID: client, Tag: ledger.WithdrawalTag(amount)}, true

	case ledger.Dispute:
		last, ok := g.deposits[client]
		if !ok {
			return ledger.Transaction{}, false
		}
		g.disputed[client] = append(g.disputed[client], last.id)
		return ledger.Transaction{ID: last.id, ClientID: client, Tag: ledger.DisputeTag()}, true

	default:
		open := g.disputed[client]
		if len(open) == 0 {
			return ledger.Transaction{}, false
		}
		i := g.rand.Intn(len(open))
		ref := open[i]
		g.disputed[client] = append(open[:i], open[i+1:]...)

		tag := ledger.ResolveTag()
		if kind == ledger.Chargeback {
			tag = ledger.ChargebackTag()
		}
		return ledger.Transaction{ID: ref, ClientID: client, Tag: tag}, true
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
