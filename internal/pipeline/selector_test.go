package pipeline

import (
	"reflect"
	"testing"
)

func TestSelectTablesFallback(t *testing.T) {
	all := []string{"orders", "customers", "products", "invoices"}

	tests := []struct {
		question string
		expected []string
	}{
		{"show me everything", []string{"orders", "customers", "products"}},
		{"what data do we have?", []string{"orders", "customers", "products"}},
		{"", []string{"orders", "customers", "products"}},
	}

	for _, tt := range tests {
		got := SelectTables(tt.question, all)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("question '%s': expected %v, got %v", tt.question, tt.expected, got)
		}
	}
}

func TestSelectTablesFallbackSmallCatalog(t *testing.T) {
	all := []string{"orders", "customers"}

	got := SelectTables("nothing relevant here", all)
	if !reflect.DeepEqual(got, []string{"orders", "customers"}) {
		t.Errorf("expected whole catalog, got %v", got)
	}
}

func TestSelectTablesMatches(t *testing.T) {
	all := []string{"orders", "customers", "products", "invoices"}

	tests := []struct {
		question string
		expected []string
	}{
		{"how many orders exist", []string{"orders"}},
		{"join customers with products", []string{"customers", "products"}},
		{"ORDERS from CUSTOMERS please", []string{"orders", "customers"}},
		{"products bought by customers who placed orders", []string{"orders", "customers", "products"}},
		{"orders customers products invoices", []string{"orders", "customers", "products", "invoices"}},
	}

	for _, tt := range tests {
		got := SelectTables(tt.question, all)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("question '%s': expected %v, got %v", tt.question, tt.expected, got)
		}
	}
}

func TestSelectTablesCatalogOrder(t *testing.T) {
	all := []string{"orders", "customers", "products"}

	// Question names them in reverse; the result stays in catalog order.
	got := SelectTables("products bought by customers in orders", all)
	expected := []string{"orders", "customers", "products"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected catalog order %v, got %v", expected, got)
	}
}

func TestSelectTablesNoDuplicates(t *testing.T) {
	all := []string{"orders", "customers"}

	got := SelectTables("orders, orders and more orders", all)
	if !reflect.DeepEqual(got, []string{"orders"}) {
		t.Errorf("expected single 'orders' entry, got %v", got)
	}
}

func TestSelectTablesCaseFolding(t *testing.T) {
	all := []string{"Orders", "CUSTOMERS"}

	got := SelectTables("how many orders do customers place", all)
	if !reflect.DeepEqual(got, []string{"Orders", "CUSTOMERS"}) {
		t.Errorf("expected case-insensitive matches with original names, got %v", got)
	}
}

func TestSelectTablesCommonWordFalsePositive(t *testing.T) {
	// Substring matching has no notion of intent: a table named like a
	// common English word matches questions that never meant it.
	all := []string{"order", "users"}

	got := SelectTables("in order to see revenue", all)
	if !reflect.DeepEqual(got, []string{"order"}) {
		t.Errorf("expected the false-positive 'order' match, got %v", got)
	}
}

func TestSelectTablesEmptyCatalog(t *testing.T) {
	got := SelectTables("anything", nil)
	if len(got) != 0 {
		t.Errorf("expected no tables from empty catalog, got %v", got)
	}
}
