package discovery

import (
	"context"

	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/schema"
)

// samplePopulation measures how often key attributes are actually set on the
// configured asset types. Sampling is best effort: count failures skip the
// asset type or pair rather than failing discovery, and the total fan-out is
// capped so large tenants don't get stormed with search queries.
func (d *Discoverer) samplePopulation(ctx context.Context) []schema.PopulationStat {
	logger := logging.FromContext(ctx)
	stats := make([]schema.PopulationStat, 0, len(d.opts.sampleAssetTypes)*len(d.opts.sampleAttributes))

	pairs := 0
	for _, assetType := range d.opts.sampleAssetTypes {
		if pairs >= d.opts.maxSamplePairs {
			break
		}

		total, err := d.client.CountAssets(ctx, assetType)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("asset_type", assetType).
				Msg("Asset count failed; skipping population sampling for type")
			continue
		}

		for _, attribute := range d.opts.sampleAttributes {
			if pairs >= d.opts.maxSamplePairs {
				break
			}
			pairs++

			var populated int64
			if total > 0 {
				populated, err = d.client.CountAssetsWithAttribute(ctx, assetType, attribute)
				if err != nil {
					logger.Warn().
						Err(err).
						Str("asset_type", assetType).
						Str("attribute", attribute).
						Msg("Attribute count failed; skipping population pair")
					continue
				}
			}

			rate := 0.0
			if total > 0 {
				rate = float64(populated) / float64(total)
			}
			stats = append(stats, schema.PopulationStat{
				AssetType:       assetType,
				Attribute:       attribute,
				TotalAssets:     total,
				PopulatedAssets: populated,
				Rate:            rate,
			})
		}
	}
	return stats
}
