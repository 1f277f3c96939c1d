package assessment

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// PERFORMANCE CLASSIFIER
// Средний балл по ВСЕМ историческим попыткам и дискретный уровень.
// Неудачные попытки тоже входят в среднее - считается вся история,
// а не только последние или сданные попытки.
// ══════════════════════════════════════════════════════════════════════════════

// Tier представляет уровень успеваемости ученика.
type Tier string

const (
	// TierDiamond - средний балл 90 и выше.
	TierDiamond Tier = "Diamond"
	// TierGold - средний балл от 80 до 90.
	TierGold Tier = "Gold"
	// TierSilver - средний балл от 70 до 80.
	TierSilver Tier = "Silver"
	// TierBronze - средний балл ниже 70.
	TierBronze Tier = "Bronze"
)

// IsValid проверяет корректность уровня.
func (t Tier) IsValid() bool {
	switch t {
	case TierDiamond, TierGold, TierSilver, TierBronze:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление уровня.
func (t Tier) String() string {
	return string(t)
}

// PerformanceClassifier вычисляет средний балл и уровень успеваемости.
type PerformanceClassifier struct{}

// NewPerformanceClassifier создаёт классификатор.
func NewPerformanceClassifier() *PerformanceClassifier {
	return &PerformanceClassifier{}
}

// AverageScore возвращает средний процент по всем попыткам с вопросами.
// Каждая попытка входит в среднее с весом 1: avg = mean(score/total*100).
// Если попыток с вопросами нет, возвращает 0.
func (pc *PerformanceClassifier) AverageScore(results []QuizResult) float64 {
	var sum float64
	var count int

	for _, r := range results {
		if !r.CountsTowardAverage() {
			continue
		}
		sum += r.Percentage()
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// TierFor возвращает уровень для среднего балла.
// Нижняя граница каждой полосы включительна: ровно 70.0 - Silver,
// 69.999 - Bronze.
func (pc *PerformanceClassifier) TierFor(avg float64) Tier {
	switch {
	case avg >= 90:
		return TierDiamond
	case avg >= 80:
		return TierGold
	case avg >= 70:
		return TierSilver
	default:
		return TierBronze
	}
}

// RoundedAverage возвращает средний балл, округлённый до ближайшего целого.
// Используется только в тексте уведомлений - классификация работает
// с неокруглённым значением.
func RoundedAverage(avg float64) int {
	return int(math.Round(avg))
}
