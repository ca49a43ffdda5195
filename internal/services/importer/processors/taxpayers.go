package processors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/ports"
)

const TypeTaxpayers = "taxpayers"

// TaxpayersProcessor parses registry lines and writes them with a
// conflict-skip insert. It keeps no state between batches.
type TaxpayersProcessor struct {
	Store  ports.RegistryStore
	Rules  *Rules
	Now    func() time.Time
	dryRun bool
}

func NewTaxpayersProcessor(store ports.RegistryStore, rules *Rules) *TaxpayersProcessor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &TaxpayersProcessor{Store: store, Rules: rules, Now: time.Now}
}

func (p *TaxpayersProcessor) Type() string { return TypeTaxpayers }

// DryRun returns a copy that parses and counts but never writes.
func (p *TaxpayersProcessor) DryRun() ports.Processor {
	c := *p
	c.dryRun = true
	return &c
}

func (p *TaxpayersProcessor) ProcessBatch(ctx context.Context, batch []ports.Line) (ports.BatchStats, error) {
	var stats ports.BatchStats
	if !p.dryRun && p.Store == nil {
		return stats, errors.New("registry store not available")
	}
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now().UTC()
	}

	rows := make([]models.Taxpayer, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))
	for _, ln := range batch {
		t, err := ParseLine(ln.Text, p.Rules, now)
		if err != nil {
			stats.Malformed++
			stats.Rejects = append(stats.Rejects, fmt.Sprintf("line %d: %v", ln.Offset+1, err))
			continue
		}
		stats.Parsed++
		if _, dup := seen[t.Identifier]; dup {
			stats.Duplicates++
			continue
		}
		seen[t.Identifier] = struct{}{}
		rows = append(rows, t)
		stats.LastIdentifier = t.Identifier
	}

	if p.dryRun || len(rows) == 0 {
		return stats, nil
	}

	inserted, err := p.Store.InsertIgnore(ctx, rows)
	if err != nil {
		return stats, err
	}
	stats.Inserted = inserted
	stats.Duplicates += len(rows) - inserted
	return stats, nil
}

// DefaultRegistry maps import types to their processors.
func DefaultRegistry(store ports.RegistryStore, rules *Rules) map[string]ports.Processor {
	return map[string]ports.Processor{
		TypeTaxpayers: NewTaxpayersProcessor(store, rules),
	}
}
