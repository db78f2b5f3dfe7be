package twbedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFields(t *testing.T) {
	wb := openSample(t)
	fields, err := wb.ListFields("Orders")
	require.NoError(t, err)
	require.Len(t, fields, 4)

	assert.Equal(t, FieldInfo{Name: "[Profit]", Caption: "Profit", DataType: "real", Role: "measure"}, fields[0])
	assert.False(t, fields[0].Calculated())
	assert.Equal(t, "SUM([Profit]) / SUM([Sales])", fields[3].Formula)
	assert.True(t, fields[3].Calculated())
	assert.Equal(t, []string{"[Profit]", "[Sales]"}, fields[3].References)

	_, err = wb.ListFields("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFields_CaptionFallsBackToName(t *testing.T) {
	wb, err := Parse([]byte(`<workbook><datasources><datasource name='D'><column name='[Qty]' datatype='integer'/></datasource></datasources></workbook>`))
	require.NoError(t, err)

	fields, err := wb.ListFields("D")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Qty", fields[0].Caption)
}

func TestSelectFields(t *testing.T) {
	tests := []struct {
		condition string
		want      []string
	}{
		{`calculated`, []string{"Margin"}},
		{`role == "measure" && !calculated`, []string{"Profit", "Sales"}},
		{`datatype == "string"`, []string{"Region"}},
		{`caption startsWith "S" || name == "[Region]"`, []string{"Sales", "Region"}},
		{`formula contains "[Sales]"`, []string{"Margin"}},
		{`"[Profit]" in references`, []string{"Margin"}},
		{`len(references) == 0`, []string{"Profit", "Sales", "Region"}},
		{`role == "nope"`, nil},
	}
	wb := openSample(t)
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			fields, err := wb.SelectFields("Orders", tt.condition)
			require.NoError(t, err)
			var got []string
			for _, f := range fields {
				got = append(got, f.Caption)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectFields_Errors(t *testing.T) {
	wb := openSample(t)

	_, err := wb.SelectFields("Orders", `role ==`)
	assert.Error(t, err)

	_, err = wb.SelectFields("Orders", `unknown_field == 1`)
	assert.Error(t, err)

	_, err = wb.SelectFields("Orders", `caption`)
	assert.Error(t, err, "non-boolean condition")

	_, err = wb.SelectFields("Nope", `calculated`)
	assert.ErrorIs(t, err, ErrNotFound)
}
