package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFlag_Codes(t *testing.T) {
	assert.Equal(t, 0, int(Red))
	assert.Equal(t, 1, int(Green))
	assert.Equal(t, 2, int(Amber))
	assert.Equal(t, 3, int(MediumRisk))
	assert.Equal(t, 4, int(White))
}

func TestFlag_StringAndParse(t *testing.T) {
	for _, f := range []Flag{Red, Green, Amber, MediumRisk, White} {
		got, err := ParseFlag(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	assert.Equal(t, "UNKNOWN", Flag(9).String())
	_, err := ParseFlag("green")
	assert.Error(t, err)
}

func TestFlag_JSON(t *testing.T) {
	data, err := json.Marshal(Output{Flags: EvaluationResult{ISCRFlag: White}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"flags":{"ISCR_FLAG":4}}`, string(data))

	var out Output
	require.NoError(t, json.Unmarshal([]byte(`{"flags":{"ISCR_FLAG":2}}`), &out))
	assert.Equal(t, Amber, out.Flags[ISCRFlag])
}

func TestFlag_JSONRejectsInvalid(t *testing.T) {
	_, err := json.Marshal(Flag(7))
	assert.Error(t, err)

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`5`), &f))
	assert.Error(t, json.Unmarshal([]byte(`"GREEN"`), &f))
}

func TestFlag_YAML(t *testing.T) {
	data, err := yaml.Marshal(Output{Flags: EvaluationResult{TotalRevenue5CrFlag: Green}})
	require.NoError(t, err)
	assert.Equal(t, "flags:\n    TOTAL_REVENUE_5CR_FLAG: 1\n", string(data))
}

func TestFlagNames(t *testing.T) {
	assert.Equal(t, []FlagName{TotalRevenue5CrFlag, BorrowingToRevenueFlag, ISCRFlag}, FlagNames())
}

func TestLineItems_Lenient(t *testing.T) {
	var s Section
	require.NoError(t, json.Unmarshal([]byte(`{"lineItems":{"net_revenue":10,"interest":null,"depreciation":"5","x":{"y":1},"flag":true}}`), &s))

	v, ok := s.LineItems.Get(ItemNetRevenue)
	assert.True(t, ok)
	assert.InDelta(t, 10.0, v, 0)

	for _, name := range []string{ItemInterest, ItemDepreciation, "x", "flag"} {
		_, ok := s.LineItems.Get(name)
		assert.False(t, ok, name)
		assert.True(t, s.Invalid(name), name)
	}
	assert.False(t, s.Invalid(ItemNetRevenue))
	assert.False(t, s.Invalid(ItemPBIT), "absent is not invalid")
}

func TestStatement_Section(t *testing.T) {
	st := &FinancialStatement{PnL: &Section{}}
	assert.NotNil(t, st.Section(SectionPnL))
	assert.Nil(t, st.Section(SectionBS))
	assert.Nil(t, st.Section("cf"))
}
