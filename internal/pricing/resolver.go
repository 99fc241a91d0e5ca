package pricing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	pricingsvc "github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	serviceCodeEC2     = "AmazonEC2"
	serviceCodeNeptune = "AmazonNeptune"
)

// volumeFamilies maps an EBS volume API name to the product family name the
// catalog uses in its "volumeType" attribute.
var volumeFamilies = map[string]string{
	"gp2":      "General Purpose",
	"gp3":      "General Purpose",
	"io1":      "Provisioned IOPS",
	"io2":      "Provisioned IOPS",
	"sc1":      "Cold HDD",
	"st1":      "Throughput Optimized HDD",
	"standard": "Magnetic",
}

// provisionedIOPSTypes lists the volume types billed per provisioned IOPS.
// All other types resolve an IOPS price of zero without a catalog call.
var provisionedIOPSTypes = map[string]bool{
	"io1": true,
	"io2": true,
}

// CatalogClient is the subset of Pricing API operations used by the resolver.
// The real *pricing.Client satisfies it; tests substitute a stub.
type CatalogClient interface {
	GetProducts(
		ctx context.Context,
		params *pricingsvc.GetProductsInput,
		optFns ...func(*pricingsvc.Options),
	) (*pricingsvc.GetProductsOutput, error)
}

// Resolver answers on-demand unit price questions against the AWS Pricing
// catalog. Every call re-queries the catalog; nothing is cached.
//
// All lookups are best-effort: any catalog error or unparseable response
// resolves to 0 with a warn log so that pricing failures never abort a scan.
type Resolver struct {
	catalog CatalogClient
	logger  zerolog.Logger
}

// NewResolver returns a Resolver backed by catalog. The Pricing API is only
// served out of a handful of regions; the caller is responsible for handing
// in a client pinned to us-east-1.
func NewResolver(catalog CatalogClient, logger zerolog.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// StoragePrice returns the monthly USD price per GB for volumeType in region.
func (r *Resolver) StoragePrice(ctx context.Context, volumeType, region string) float64 {
	filters := []pricingtypes.Filter{
		termMatch("volumeType", volumeFamilies[volumeType]),
		termMatch("productFamily", "Storage"),
		termMatch("volumeApiName", volumeType),
		termMatch("location", LocaleForRegion(region)),
	}
	return r.lookup(ctx, serviceCodeEC2, "storage", filters)
}

// IOPSPrice returns the monthly USD price per provisioned IOPS for volumeType
// in region. Volume types that are not billed per IOPS resolve to 0 without
// touching the catalog.
func (r *Resolver) IOPSPrice(ctx context.Context, volumeType, region string) float64 {
	if !provisionedIOPSTypes[volumeType] {
		return 0
	}
	filters := []pricingtypes.Filter{
		termMatch("group", "EBS IOPS"),
		termMatch("productFamily", "System Operation"),
		termMatch("location", LocaleForRegion(region)),
	}
	return r.lookup(ctx, serviceCodeEC2, "iops", filters)
}

// ThroughputPrice returns the monthly USD price per GiB/s of provisioned
// throughput in region. Callers bill only the excess above the gp3 free
// baseline and convert to MiB/s themselves.
func (r *Resolver) ThroughputPrice(ctx context.Context, region string) float64 {
	filters := []pricingtypes.Filter{
		termMatch("group", "EBS Throughput"),
		termMatch("productFamily", "Provisioned Throughput"),
		termMatch("location", LocaleForRegion(region)),
	}
	return r.lookup(ctx, serviceCodeEC2, "throughput", filters)
}

// InstancePrice returns the on-demand hourly USD price for a Neptune database
// instance class in region.
func (r *Resolver) InstancePrice(ctx context.Context, instanceClass, region string) float64 {
	filters := []pricingtypes.Filter{
		termMatch("instanceType", instanceClass),
		termMatch("location", LocaleForRegion(region)),
	}
	return r.lookup(ctx, serviceCodeNeptune, "instance", filters)
}

// lookup queries the catalog with the assembled filters and extracts a single
// unit price from the first matching product. Failures resolve to 0.
func (r *Resolver) lookup(
	ctx context.Context,
	serviceCode, category string,
	filters []pricingtypes.Filter,
) float64 {
	out, err := r.catalog.GetProducts(ctx, &pricingsvc.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("category", category).Msg("pricing lookup failed; using 0")
		return 0
	}
	if len(out.PriceList) == 0 {
		r.logger.Warn().Str("category", category).Msg("pricing catalog returned no products; using 0")
		return 0
	}

	price, err := extractUnitPrice([]byte(out.PriceList[0]))
	if err != nil {
		r.logger.Warn().Err(err).Str("category", category).Msg("pricing document parse failed; using 0")
		return 0
	}
	return price
}

// termMatch builds a TERM_MATCH catalog filter.
func termMatch(field, value string) pricingtypes.Filter {
	return pricingtypes.Filter{
		Field: aws.String(field),
		Type:  pricingtypes.FilterTypeTermMatch,
		Value: aws.String(value),
	}
}

// priceDocument is the subset of a Pricing API price-list document needed to
// extract on-demand per-unit prices.
type priceDocument struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// extractUnitPrice parses a price-list document and returns the lowest
// positive on-demand USD per-unit price across all terms and dimensions.
//
// The catalog can return several term/dimension entries for one product
// (e.g. tiered or free-tier dimensions); picking the lowest positive price is
// a deterministic selection, unlike "first", which would depend on map order.
func extractUnitPrice(doc []byte) (float64, error) {
	var parsed priceDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return 0, fmt.Errorf("unmarshal price document: %w", err)
	}
	if len(parsed.Terms.OnDemand) == 0 {
		return 0, fmt.Errorf("price document has no OnDemand terms")
	}

	best := 0.0
	for _, term := range parsed.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			raw, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v <= 0 {
				continue
			}
			if best == 0 || v < best {
				best = v
			}
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("price document has no positive USD price dimension")
	}
	return best, nil
}
