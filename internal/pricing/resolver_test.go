package pricing

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	pricingsvc "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog records GetProducts calls and plays back canned responses.
type fakeCatalog struct {
	calls     []*pricingsvc.GetProductsInput
	priceList []string
	err       error
}

func (f *fakeCatalog) GetProducts(
	_ context.Context,
	params *pricingsvc.GetProductsInput,
	_ ...func(*pricingsvc.Options),
) (*pricingsvc.GetProductsOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &pricingsvc.GetProductsOutput{PriceList: f.priceList}, nil
}

// priceDoc builds a minimal price-list document with a single on-demand
// dimension at the given USD price.
func priceDoc(usd string) string {
	return fmt.Sprintf(
		`{"terms":{"OnDemand":{"T1":{"priceDimensions":{"D1":{"pricePerUnit":{"USD":%q}}}}}}}`,
		usd,
	)
}

func filterValues(input *pricingsvc.GetProductsInput) map[string]string {
	m := make(map[string]string, len(input.Filters))
	for _, f := range input.Filters {
		m[aws.ToString(f.Field)] = aws.ToString(f.Value)
	}
	return m
}

func TestResolverStoragePrice(t *testing.T) {
	catalog := &fakeCatalog{priceList: []string{priceDoc("0.08")}}
	r := NewResolver(catalog, zerolog.Nop())

	got := r.StoragePrice(context.Background(), "gp3", "us-west-2")
	assert.Equal(t, 0.08, got)

	require.Len(t, catalog.calls, 1)
	call := catalog.calls[0]
	assert.Equal(t, "AmazonEC2", aws.ToString(call.ServiceCode))
	assert.Equal(t, map[string]string{
		"volumeType":    "General Purpose",
		"productFamily": "Storage",
		"volumeApiName": "gp3",
		"location":      "US West (Oregon)",
	}, filterValues(call))
}

func TestResolverIOPSPrice(t *testing.T) {
	t.Run("non provisioned-IOPS types skip the catalog", func(t *testing.T) {
		catalog := &fakeCatalog{priceList: []string{priceDoc("0.065")}}
		r := NewResolver(catalog, zerolog.Nop())

		for _, volumeType := range []string{"gp2", "gp3", "sc1", "st1", "standard"} {
			assert.Zero(t, r.IOPSPrice(context.Background(), volumeType, "us-east-1"), volumeType)
		}
		assert.Empty(t, catalog.calls)
	})

	t.Run("io1 and io2 query the catalog", func(t *testing.T) {
		catalog := &fakeCatalog{priceList: []string{priceDoc("0.065")}}
		r := NewResolver(catalog, zerolog.Nop())

		got := r.IOPSPrice(context.Background(), "io1", "us-east-1")
		assert.Equal(t, 0.065, got)

		require.Len(t, catalog.calls, 1)
		values := filterValues(catalog.calls[0])
		assert.Equal(t, "EBS IOPS", values["group"])
		assert.Equal(t, "System Operation", values["productFamily"])
	})
}

func TestResolverThroughputPrice(t *testing.T) {
	catalog := &fakeCatalog{priceList: []string{priceDoc("40")}}
	r := NewResolver(catalog, zerolog.Nop())

	got := r.ThroughputPrice(context.Background(), "eu-west-1")
	assert.Equal(t, 40.0, got)

	require.Len(t, catalog.calls, 1)
	values := filterValues(catalog.calls[0])
	assert.Equal(t, "EBS Throughput", values["group"])
	assert.Equal(t, "Provisioned Throughput", values["productFamily"])
	assert.Equal(t, "EU (Ireland)", values["location"])
}

func TestResolverInstancePrice(t *testing.T) {
	catalog := &fakeCatalog{priceList: []string{priceDoc("0.348")}}
	r := NewResolver(catalog, zerolog.Nop())

	got := r.InstancePrice(context.Background(), "db.r5.large", "us-east-1")
	assert.Equal(t, 0.348, got)

	require.Len(t, catalog.calls, 1)
	call := catalog.calls[0]
	assert.Equal(t, "AmazonNeptune", aws.ToString(call.ServiceCode))
	values := filterValues(call)
	assert.Equal(t, "db.r5.large", values["instanceType"])
	assert.Equal(t, "US East (N. Virginia)", values["location"])
}

func TestResolverFailuresResolveToZero(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog error", func(t *testing.T) {
		catalog := &fakeCatalog{err: fmt.Errorf("throttled")}
		r := NewResolver(catalog, zerolog.Nop())
		assert.Zero(t, r.StoragePrice(ctx, "gp2", "us-east-1"))
	})

	t.Run("empty product list", func(t *testing.T) {
		catalog := &fakeCatalog{}
		r := NewResolver(catalog, zerolog.Nop())
		assert.Zero(t, r.StoragePrice(ctx, "gp2", "us-east-1"))
	})

	t.Run("malformed document", func(t *testing.T) {
		catalog := &fakeCatalog{priceList: []string{"{not json"}}
		r := NewResolver(catalog, zerolog.Nop())
		assert.Zero(t, r.StoragePrice(ctx, "gp2", "us-east-1"))
	})
}

func TestExtractUnitPrice(t *testing.T) {
	t.Run("lowest positive price wins", func(t *testing.T) {
		doc := `{"terms":{"OnDemand":{
			"T1":{"priceDimensions":{
				"D1":{"pricePerUnit":{"USD":"0.10"}},
				"D2":{"pricePerUnit":{"USD":"0.08"}}}},
			"T2":{"priceDimensions":{
				"D3":{"pricePerUnit":{"USD":"0.0000000000"}}}}}}}`
		got, err := extractUnitPrice([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, 0.08, got)
	})

	t.Run("no on-demand terms", func(t *testing.T) {
		_, err := extractUnitPrice([]byte(`{"terms":{"OnDemand":{}}}`))
		assert.Error(t, err)
	})

	t.Run("only zero prices", func(t *testing.T) {
		_, err := extractUnitPrice([]byte(priceDoc("0.00")))
		assert.Error(t, err)
	})

	t.Run("missing USD unit", func(t *testing.T) {
		doc := `{"terms":{"OnDemand":{"T1":{"priceDimensions":{"D1":{"pricePerUnit":{"CNY":"0.55"}}}}}}}`
		_, err := extractUnitPrice([]byte(doc))
		assert.Error(t, err)
	})
}
