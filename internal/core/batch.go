package core

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/illarion/datavault/internal/vault"
)

// VaultFunc runs one operation on one vault.
type VaultFunc func(ctx context.Context, v vault.Vault) (*Report, error)

// VaultResult is the outcome of one vault in a batch.
type VaultResult struct {
	Vault  vault.Vault
	Report *Report
	Err    error
}

// BatchReport collects per-vault results in processing order.
type BatchReport struct {
	Results []VaultResult
}

// Err combines the per-vault errors, each prefixed with its vault.
func (b *BatchReport) Err() error {
	var err error
	for _, r := range b.Results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Vault.Root, r.Err))
		}
	}
	return err
}

// Failed returns the number of vaults that returned an error.
func (b *BatchReport) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// RunBatch applies fn to each vault in order. A failing vault does not stop
// the others; cancellation does, and is recorded against the first vault
// that did not run.
func RunBatch(ctx context.Context, vaults []vault.Vault, fn VaultFunc) *BatchReport {
	batch := &BatchReport{Results: make([]VaultResult, 0, len(vaults))}
	for _, v := range vaults {
		if err := ctx.Err(); err != nil {
			batch.Results = append(batch.Results, VaultResult{Vault: v, Err: err})
			break
		}
		report, err := fn(ctx, v)
		batch.Results = append(batch.Results, VaultResult{Vault: v, Report: report, Err: err})
	}
	return batch
}
