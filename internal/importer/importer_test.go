package importer

import (
	"context"
	"strings"
	"testing"

	"restaurant-ops/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

type stubCategoryRepo struct {
	items []domain.Category
}

func (s *stubProductRepo) UpsertProduct(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubCategoryRepo) UpsertCategory(_ context.Context, c domain.Category) (*domain.Category, error) {
	c.ID = "cat-" + c.Key
	s.items = append(s.items, c)
	return &c, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `category,category.name,key,sku,name,description,price,currency,available,modifiers
burgers,Burgers,classic-burger,BRG-1,Classic Burger,Beef and cheese,18.50,,,bacon:Bacon:4.00
,,,,,,,,,extra-cheese:Extra cheese:2.5
drinks,,soda,,Soda,,6,brl,false,
burgers,,veggie-burger,,Veggie Burger,,21.00,,,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo, "est-1", "BRL")

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	burger := repo.items[0]
	if burger.Key != "classic-burger" || burger.SKU != "BRG-1" || burger.PriceCents != 1850 || burger.Currency != "BRL" {
		t.Fatalf("unexpected product data: %+v", burger)
	}
	if len(burger.Modifiers) != 2 || burger.Modifiers[1].Key != "extra-cheese" || burger.Modifiers[1].PriceCents != 250 {
		t.Fatalf("expected continuation modifiers, got %+v", burger.Modifiers)
	}
	if burger.CategoryID == nil || *burger.CategoryID != "cat-burgers" {
		t.Fatalf("expected burgers category, got %v", burger.CategoryID)
	}

	soda := repo.items[1]
	if soda.SKU != "SODA" || soda.Available || soda.PriceCents != 600 {
		t.Fatalf("unexpected soda %+v", soda)
	}

	if len(catRepo.items) != 2 {
		t.Fatalf("expected each category upserted once, got %d", len(catRepo.items))
	}
	if catRepo.items[1].Name != "Drinks" || catRepo.items[1].Position != 1 {
		t.Fatalf("expected title-cased second category, got %+v", catRepo.items[1])
	}
}

func TestCSVImporter_RejectsBadPrice(t *testing.T) {
	csvData := `key,name,price
fries,Fries,4.999`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, &stubCategoryRepo{}, "est-1", "BRL")
	if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line-numbered price error, got %v", err)
	}
}

func TestCSVImporter_RejectsOrphanModifierRow(t *testing.T) {
	csvData := `key,name,price,modifiers
,,,bacon:Bacon:4`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, &stubCategoryRepo{}, "est-1", "BRL")
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for modifier row without product")
	}
}

func TestParseModifiers(t *testing.T) {
	mods, err := parseModifiers(" bacon:Bacon:4.00 ; ")
	if err != nil || len(mods) != 1 || mods[0].PriceCents != 400 {
		t.Fatalf("unexpected modifiers %+v err=%v", mods, err)
	}
	if _, err := parseModifiers("bacon:4.00"); err == nil {
		t.Fatalf("expected malformed modifier error")
	}
}
