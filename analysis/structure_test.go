package analysis

import (
	"errors"
	"testing"

	appconfig "crisisflow/config"
	"crisisflow/models"
)

func mixedAds(buys, sells int) []models.Advertisement {
	ads := make([]models.Advertisement, 0, buys+sells)
	for i := 0; i < buys; i++ {
		ads = append(ads, models.Advertisement{CountryCode: "AR", Side: models.SideBuy, Price: 1300})
	}
	for i := 0; i < sells; i++ {
		ads = append(ads, models.Advertisement{CountryCode: "AR", Side: models.SideSell, Price: 1310})
	}
	return ads
}

func TestClassifySellPressure(t *testing.T) {
	classifier := NewStructureClassifier(appconfig.DefaultAnalysis())

	record, err := classifier.Classify("SD", mixedAds(4, 103))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if record.BuyCount != 4 || record.SellCount != 103 {
		t.Fatalf("counts = %d/%d, want 4/103", record.BuyCount, record.SellCount)
	}
	if record.Pattern != models.PatternSellPressure {
		t.Fatalf("pattern = %s, want sell_pressure", record.Pattern)
	}
}

func TestClassifyBalanced(t *testing.T) {
	classifier := NewStructureClassifier(appconfig.DefaultAnalysis())

	record, err := classifier.Classify("AR", mixedAds(100, 100))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if record.Pattern != models.PatternBalanced {
		t.Fatalf("pattern = %s, want balanced", record.Pattern)
	}
	if record.SellRatio != 0.5 {
		t.Fatalf("sell ratio = %v, want 0.5", record.SellRatio)
	}
}

func TestClassifyBuyPressure(t *testing.T) {
	classifier := NewStructureClassifier(appconfig.DefaultAnalysis())

	record, err := classifier.Classify("AR", mixedAds(95, 5))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if record.Pattern != models.PatternBuyPressure {
		t.Fatalf("pattern = %s, want buy_pressure", record.Pattern)
	}
}

func TestClassifyBoundaryRatios(t *testing.T) {
	classifier := NewStructureClassifier(appconfig.DefaultAnalysis())

	// Exactly the sell threshold: 90 of 100.
	record, err := classifier.Classify("AR", mixedAds(10, 90))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if record.Pattern != models.PatternSellPressure {
		t.Fatalf("ratio 0.90 should be sell_pressure, got %s", record.Pattern)
	}

	// Exactly the buy threshold: 10 of 100.
	record, err = classifier.Classify("AR", mixedAds(90, 10))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if record.Pattern != models.PatternBuyPressure {
		t.Fatalf("ratio 0.10 should be buy_pressure, got %s", record.Pattern)
	}

	// Just inside the balanced band.
	record, err = classifier.Classify("AR", mixedAds(89, 11))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if record.Pattern != models.PatternBalanced {
		t.Fatalf("ratio 0.11 should be balanced, got %s", record.Pattern)
	}
}

func TestClassifySingleAd(t *testing.T) {
	classifier := NewStructureClassifier(appconfig.DefaultAnalysis())

	record, err := classifier.Classify("SD", mixedAds(0, 1))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if record.SellRatio != 1 || record.Pattern != models.PatternSellPressure {
		t.Fatalf("single sell ad should be ratio 1 sell_pressure: %+v", record)
	}
}

func TestClassifyEmptyAds(t *testing.T) {
	classifier := NewStructureClassifier(appconfig.DefaultAnalysis())

	if _, err := classifier.Classify("SD", nil); !errors.Is(err, ErrInsufficientSampleData) {
		t.Fatalf("expected ErrInsufficientSampleData, got %v", err)
	}
}
