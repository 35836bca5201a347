package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	for _, bad := range []string{"", "2023-02-29", "29/02/2024", "2024-2-3"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	maputo := time.FixedZone("CAT", 2*60*60)
	late := time.Date(2024, time.June, 18, 23, 30, 0, 0, maputo)

	assert.Equal(t, NewDate(2024, time.June, 18), DateOf(late))
	assert.Equal(t, NewDate(2024, time.June, 18), DateOf(late.UTC()))
	assert.Equal(t, NewDate(2024, time.June, 19), DateOf(late.Add(time.Hour)))
}

func TestDateJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2024, time.March, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-05"}`, string(raw))

	var in struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-03-05"}`), &in))
	assert.True(t, in.D.SameDay(NewDate(2024, time.March, 5)))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"d":20240305}`), &in), ErrInvalidDate)
}

func TestSaleInputValidation(t *testing.T) {
	valid := SaleInput{
		Date:      NewDate(2024, time.June, 18),
		ItemName:  "Rice",
		Quantity:  1,
		CostPrice: decimal.Zero,
		SalePrice: decimal.NewFromInt(2),
	}
	require.NoError(t, valid.Validate())

	cases := map[error]func(*SaleInput){
		ErrInvalidDate:     func(in *SaleInput) { in.Date = Date{} },
		ErrEmptyItemName:   func(in *SaleInput) { in.ItemName = "  " },
		ErrInvalidQuantity: func(in *SaleInput) { in.Quantity = 0 },
		ErrNegativePrice:   func(in *SaleInput) { in.CostPrice = decimal.NewFromInt(-1) },
	}
	for want, mutate := range cases {
		in := valid
		mutate(&in)
		assert.ErrorIs(t, in.Validate(), want)
	}
}

func TestToSaleComputesProfit(t *testing.T) {
	sale := SaleInput{
		Date:      NewDate(2024, time.June, 18),
		ItemName:  " Rice ",
		Quantity:  3,
		CostPrice: decimal.RequireFromString("4.20"),
		SalePrice: decimal.RequireFromString("3.70"),
	}.ToSale("s1")

	assert.Equal(t, "Rice", sale.ItemName)
	assert.True(t, decimal.RequireFromString("-1.5").Equal(sale.Profit), sale.Profit.String())
	assert.True(t, decimal.RequireFromString("11.1").Equal(sale.Revenue()))
}

func TestExpenseInputValidation(t *testing.T) {
	valid := ExpenseInput{
		Date:        NewDate(2024, time.June, 18),
		Type:        ExpenseOperating,
		Description: "Rent",
		Amount:      decimal.NewFromInt(15),
	}
	require.NoError(t, valid.Validate())

	zero := valid
	zero.Amount = decimal.Zero
	assert.ErrorIs(t, zero.Validate(), ErrInvalidAmount)

	unknown := valid
	unknown.Type = "Gift"
	assert.ErrorIs(t, unknown.Validate(), ErrInvalidExpenseType)

	blank := valid
	blank.Description = ""
	assert.ErrorIs(t, blank.Validate(), ErrEmptyDescription)
}

func TestExpenseCategory(t *testing.T) {
	assert.Equal(t, StockCategory, Expense{Type: ExpenseStockPurchase, Description: "Crates"}.Category())
	assert.Equal(t, "Rent", Expense{Type: ExpenseOperating, Description: "Rent"}.Category())
}

func TestInventory(t *testing.T) {
	item := InventoryInput{Name: "Soap", Quantity: 5, CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(3)}
	require.NoError(t, item.Validate())

	stocked := item.ToItem("i1")
	assert.True(t, stocked.LowStock())
	assert.True(t, decimal.NewFromInt(1).Equal(stocked.ProfitPerUnit()))

	stocked.Quantity = 6
	assert.False(t, stocked.LowStock())

	item.Quantity = -1
	assert.ErrorIs(t, item.Validate(), ErrNegativeQuantity)
	assert.ErrorIs(t, InventoryInput{}.Validate(), ErrEmptyName)
}

func TestInitialCapital(t *testing.T) {
	assert.True(t, decimal.NewFromInt(7000).Equal(DefaultInitialCapital().Total()))
	assert.ErrorIs(t, InitialCapital{Stock: decimal.NewFromInt(-1)}.Validate(), ErrNegativeCapital)
	assert.NoError(t, InitialCapital{}.Validate())
}

func TestParseCommand(t *testing.T) {
	cmd := ParseCommand("  /SALE 2 10 25 Rice Bag ")
	assert.Equal(t, CommandSale, cmd.Type)
	assert.Equal(t, []string{"2", "10", "25", "Rice", "Bag"}, cmd.Args)

	assert.Equal(t, CommandExpense, ParseCommand("spent op 5 lunch").Type)
	assert.Equal(t, CommandToday, ParseCommand("/summary").Type)
	assert.Equal(t, CommandReport, ParseCommand("/reports").Type)
	assert.Equal(t, CommandHelp, ParseCommand("/start").Type)
	assert.Equal(t, CommandUnknown, ParseCommand("hello there").Type)

	empty := ParseCommand("   ")
	assert.Equal(t, CommandUnknown, empty.Type)
	assert.Empty(t, empty.Args)
}
