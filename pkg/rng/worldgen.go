package rng

// Multipliers applied to region coordinates when mixing a salted
// structure-placement seed.
const (
	regionMulX int64 = 341873128712
	regionMulZ int64 = 132897987541
)

// SetLargeFeatureSeed derives the per-chunk seed used for structure
// selection and structure piece layout.
func (r *Legacy) SetLargeFeatureSeed(worldSeed int64, x, z int) {
	r.SetSeed(worldSeed)
	a := r.NextLong()
	b := r.NextLong()
	r.SetSeed(int64(x)*a ^ int64(z)*b ^ worldSeed)
}

// SetLargeFeatureWithSalt derives the per-region seed used by random-spread
// structure placement.
func (r *Legacy) SetLargeFeatureWithSalt(worldSeed int64, x, z int, salt int32) {
	r.SetSeed(int64(x)*regionMulX + int64(z)*regionMulZ + worldSeed + int64(salt))
}
