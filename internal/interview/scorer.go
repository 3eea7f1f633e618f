package interview

import "math"

// SpecificityWords es el largo de respuesta a partir del cual no se penaliza el peso.
const SpecificityWords = 12

// TraitObservation es la evidencia de un turno para un rasgo.
type TraitObservation struct {
	Trait            Trait   `json:"trait"`
	NormalizedRating float64 `json:"normalized_rating"`
	Weight           float64 `json:"weight"`
}

// TraitState acumula la media ponderada de un rasgo.
type TraitState struct {
	WeightedSum float64 `json:"weighted_sum"`
	TotalWeight float64 `json:"total_weight"`
	SampleCount int     `json:"sample_count"`
}

// Mean devuelve la media y false si todavia no hay evidencia.
// Sin peso acumulado la media es indefinida, no cero.
func (t TraitState) Mean() (float64, bool) {
	if t.TotalWeight <= 0 {
		return 0, false
	}
	return t.WeightedSum / t.TotalWeight, true
}

// CoverageSet marca que rasgos recibieron al menos una observacion con peso.
type CoverageSet [traitCount]bool

func (c CoverageSet) Covered(t Trait) bool {
	return c[t]
}

// All indica si los tres rasgos estan cubiertos.
func (c CoverageSet) All() bool {
	for _, covered := range c {
		if !covered {
			return false
		}
	}
	return true
}

// ScorerState es el agregado por sesion. Solo crece; nunca se revierte.
type ScorerState struct {
	Traits   [traitCount]TraitState `json:"traits"`
	Coverage CoverageSet            `json:"coverage"`
}

// JudgeResult es la salida del juez para un turno. Ratings nil significa resultado ausente o invalido.
type JudgeResult struct {
	Ratings    map[Trait]float64
	Confidence map[Trait]float64
}

// Absent indica que el juez no produjo evidencia utilizable.
func (r JudgeResult) Absent() bool {
	return len(r.Ratings) == 0
}

// WeightSignal son los datos de calidad con los que se calcula el peso de una observacion.
type WeightSignal struct {
	Trait         Trait
	Rating        float64
	HasRating     bool
	Confidence    float64
	HasConfidence bool
	AnswerWords   int
}

// WeightFunc calcula el peso de una observacion. Puede devolver cualquier real; el scorer lo acota a >= 0.
type WeightFunc func(WeightSignal) float64

// DefaultWeight da peso cero si el juez no califico el rasgo o la respuesta esta vacia;
// si no, confianza por especificidad (largo de la respuesta).
func DefaultWeight(sig WeightSignal) float64 {
	if !sig.HasRating || sig.AnswerWords <= 0 {
		return 0
	}
	confidence := 1.0
	if sig.HasConfidence {
		confidence = clamp01(sig.Confidence)
	}
	specificity := math.Min(1, float64(sig.AnswerWords)/SpecificityWords)
	return confidence * specificity
}

// NormalizeRating lleva un rating 0-100 del juez a [0,1].
func NormalizeRating(raw float64) float64 {
	return clamp01(raw / 100)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TraitScorer agrega observaciones y responde si hay evidencia suficiente.
type TraitScorer struct {
	Weight WeightFunc
}

// ComputeWeight delega en la funcion configurada y garantiza un resultado no negativo.
func (s TraitScorer) ComputeWeight(sig WeightSignal) float64 {
	fn := s.Weight
	if fn == nil {
		fn = DefaultWeight
	}
	w := fn(sig)
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// Observe convierte el resultado del juez en una observacion por rasgo.
// Un resultado ausente produce tres observaciones de peso y rating cero.
func (s TraitScorer) Observe(result JudgeResult, answerWords int) []TraitObservation {
	obs := make([]TraitObservation, 0, len(AllTraits))
	for _, t := range AllTraits {
		if result.Absent() {
			obs = append(obs, TraitObservation{Trait: t})
			continue
		}
		raw, hasRating := result.Ratings[t]
		conf, hasConf := result.Confidence[t]
		rating := 0.0
		if hasRating {
			rating = NormalizeRating(raw)
		}
		obs = append(obs, TraitObservation{
			Trait:            t,
			NormalizedRating: rating,
			Weight: s.ComputeWeight(WeightSignal{
				Trait:         t,
				Rating:        rating,
				HasRating:     hasRating,
				Confidence:    conf,
				HasConfidence: hasConf,
				AnswerWords:   answerWords,
			}),
		})
	}
	return obs
}

// Update aplica una observacion. Peso <= 0 no toca el agregado para no diluir la media hacia cero.
func (TraitScorer) Update(state ScorerState, obs TraitObservation) ScorerState {
	if obs.Weight <= 0 || math.IsNaN(obs.Weight) || obs.Trait < 0 || obs.Trait >= traitCount {
		return state
	}
	ts := state.Traits[obs.Trait]
	ts.WeightedSum += clamp01(obs.NormalizedRating) * obs.Weight
	ts.TotalWeight += obs.Weight
	ts.SampleCount++
	state.Traits[obs.Trait] = ts
	state.Coverage[obs.Trait] = true
	return state
}

// StopCheck es true cuando todos los rasgos tienen evidencia, sin importar las medias.
func (TraitScorer) StopCheck(state ScorerState) bool {
	return state.Coverage.All()
}

// TraitSnapshot es la proyeccion de solo lectura de un rasgo.
type TraitSnapshot struct {
	Trait   string   `json:"trait"`
	Mean    *float64 `json:"mean"`
	Covered bool     `json:"covered"`
	Samples int      `json:"samples"`
}

// ScorerSnapshot se expone para paneles de debug.
type ScorerSnapshot struct {
	Traits []TraitSnapshot `json:"traits"`
	Ready  bool            `json:"ready"`
}

// Snapshot copia el estado en una vista que no permite mutarlo.
func (s TraitScorer) Snapshot(state ScorerState) ScorerSnapshot {
	out := ScorerSnapshot{
		Traits: make([]TraitSnapshot, 0, len(AllTraits)),
		Ready:  s.StopCheck(state),
	}
	for _, t := range AllTraits {
		ts := state.Traits[t]
		snap := TraitSnapshot{
			Trait:   t.String(),
			Covered: state.Coverage.Covered(t),
			Samples: ts.SampleCount,
		}
		if mean, ok := ts.Mean(); ok {
			snap.Mean = &mean
		}
		out.Traits = append(out.Traits, snap)
	}
	return out
}
