package ml

import "strings"

const (
	FeatureTrafficLoad    = "TrafficLoad"
	FeaturePacketReceived = "PacketReceived"
	FeatureResidualEnergy = "ResidualEnergy"
	FeatureDistanceToBS   = "DistanceToBS"

	LabelColumn      = "OptimalCHRotation"
	PredictionColumn = "Predicted_CH_Rotation"
)

// Schema is the ordered list of feature columns a model consumes.
type Schema []string

// DefaultSchema is the cluster head feature set, in training order.
func DefaultSchema() Schema {
	return Schema{
		FeatureTrafficLoad,
		FeaturePacketReceived,
		FeatureResidualEnergy,
		FeatureDistanceToBS,
	}
}

func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	return "[" + strings.Join(s, " ") + "]"
}

// CHFeatures is one cluster head observation.
type CHFeatures struct {
	TrafficLoad    float64
	PacketReceived float64
	ResidualEnergy float64
	DistanceToBS   float64
}

// FeatureVector orders the observation according to DefaultSchema.
func FeatureVector(feature CHFeatures) []float64 {
	return []float64{
		feature.TrafficLoad,
		feature.PacketReceived,
		feature.ResidualEnergy,
		feature.DistanceToBS,
	}
}

// FeaturesFromVector is the inverse of FeatureVector.
func FeaturesFromVector(vector []float64) CHFeatures {
	var f CHFeatures
	if len(vector) < 4 {
		return f
	}
	f.TrafficLoad = vector[0]
	f.PacketReceived = vector[1]
	f.ResidualEnergy = vector[2]
	f.DistanceToBS = vector[3]
	return f
}
