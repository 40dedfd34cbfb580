package codec

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func coeffBlock(values map[Position]float64) *mat.Dense {
	m := mat.NewDense(8, 8, nil)
	for p, v := range values {
		m.Set(p.Row, p.Col, v)
	}
	return m
}

var (
	posA = Position{Row: 2, Col: 3}
	posB = Position{Row: 3, Col: 2}
)

func TestDifferentialEmbed(t *testing.T) {
	tests := []struct {
		name         string
		strength     float64
		maxMod       float64
		a, b         float64
		bit          byte
		wantA, wantB float64
	}{
		{"already ordered, widened", 35, 40, 10, 5, 1, 25, -10},
		{"wrong order, swapped then widened", 35, 40, 10, 5, 0, -10, 25},
		{"equal values", 35, 40, 0, 0, 0, -17.5, 17.5},
		{"push clamped", 100, 10, 0, 0, 1, 10, -10},
		{"gap already sufficient", 35, 40, 100, 0, 1, 100, 0},
		{"wide gap wrong order only swapped", 35, 40, 100, 0, 0, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Differential{Pairs: [][2]Position{{posA, posB}}, Strength: tt.strength, MaxModification: tt.maxMod}
			m := coeffBlock(map[Position]float64{posA: tt.a, posB: tt.b})
			d.EmbedBit(m, tt.bit)
			if got := m.At(posA.Row, posA.Col); got != tt.wantA {
				t.Errorf("A = %v, want %v", got, tt.wantA)
			}
			if got := m.At(posB.Row, posB.Col); got != tt.wantB {
				t.Errorf("B = %v, want %v", got, tt.wantB)
			}
			if got := d.DetectBit(m); got != tt.bit {
				t.Errorf("DetectBit = %d, want %d", got, tt.bit)
			}
		})
	}
}

func TestDifferentialTouchesOnlyPairs(t *testing.T) {
	d := &Differential{Pairs: [][2]Position{{posA, posB}}, Strength: 35, MaxModification: 40}
	m := mat.NewDense(8, 8, nil)
	for i := range m.RawMatrix().Data {
		m.RawMatrix().Data[i] = float64(i)
	}
	before := mat.DenseCopyOf(m)
	d.EmbedBit(m, 0)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := Position{Row: r, Col: c}
			if p == posA || p == posB {
				continue
			}
			if m.At(r, c) != before.At(r, c) {
				t.Errorf("coefficient %s changed", p)
			}
		}
	}
}

func TestAdditiveEmbed(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		bit  byte
		want float64
	}{
		{"zero to target", 0, 1, 10},
		{"zero to negative target", 0, 0, -10},
		{"near target pushed a full step", 9, 1, 19},
		{"beyond target pushed further", 15, 1, 25},
		{"opposing value clamped", -50, 1, -30},
		{"negative side near target", -9, 0, -19},
	}
	a := &Additive{Positions: []Position{posA}, Strength: 10, MaxModification: 20}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := coeffBlock(map[Position]float64{posA: tt.v})
			a.EmbedBit(m, tt.bit)
			if got := m.At(posA.Row, posA.Col); got != tt.want {
				t.Errorf("coefficient = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdditiveDetect(t *testing.T) {
	a := &Additive{Positions: []Position{posA, posB}, Strength: 10, MaxModification: 20}
	tests := []struct {
		a, b float64
		want byte
	}{
		{10, 10, 1},
		{-10, -10, 0},
		{0.1, 0.1, 1},   // inside dead band, positive
		{-0.1, -0.1, 0}, // inside dead band, negative
		{0, 0, 1},
		{30, -10, 1},
	}
	for _, tt := range tests {
		m := coeffBlock(map[Position]float64{posA: tt.a, posB: tt.b})
		if got := a.DetectBit(m); got != tt.want {
			t.Errorf("DetectBit(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewStrategy(t *testing.T) {
	cfg := DefaultConfig()
	s, err := NewStrategy(cfg)
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	d, ok := s.(*Differential)
	if !ok {
		t.Fatalf("default strategy is %T, want *Differential", s)
	}
	if len(d.Pairs) != 1 || d.Pairs[0] != [2]Position{posA, posB} {
		t.Errorf("pairs = %v", d.Pairs)
	}

	cfg.Strategy = "rotate"
	if _, err := NewStrategy(cfg); err == nil {
		t.Error("unknown strategy accepted")
	}
}
