package snipeit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/snipeit-e2e/internal/locator"
)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"", Select2, false},
		{"select2", Select2, false},
		{" Native ", Native, false},
		{"bootstrap", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVariant(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistriesAreComplete(t *testing.T) {
	for _, v := range Variants() {
		reg := Registry(v)
		require.NoError(t, reg.Validate(), string(v))
		for _, name := range []locator.Name{
			LoginUsername, NavCreateNew, AssetsSearch, AssetsRows,
			CreateTag, CreateSubmit, CreateSuccess, DetailsHistoryTab,
			DetailsHistoryRows, DetailsDelete, DetailsConfirm,
		} {
			_, ok := reg[name]
			assert.True(t, ok, "%s lacks %s", v, name)
		}
	}
	_, ok := Registry(Select2)[Select2ModelOpen]
	assert.True(t, ok)
	_, ok = Registry(Native)[DetailsTerms]
	assert.True(t, ok)
}

func TestURLHelpers(t *testing.T) {
	assert.True(t, IsLoginURL("https://demo.snipeitapp.com/login"))
	assert.True(t, IsLoginURL("https://demo.snipeitapp.com/login/?next=/"))
	assert.False(t, IsLoginURL("https://demo.snipeitapp.com/"))
	assert.True(t, IsAssetList("https://demo.snipeitapp.com/hardware?deleted=1"))
	assert.False(t, IsAssetList("https://demo.snipeitapp.com/hardware/12"))
	assert.False(t, IsAssetList("://bad"))
}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "MacBook Pro 13", searchTerm(`MacBook Pro 13"`))
	assert.Equal(t, "Ready to Deploy", searchTerm(" Ready to Deploy "))
	assert.True(t, containsFold(`Macbook Pro 13"`, "MACBOOK pro"))
}
