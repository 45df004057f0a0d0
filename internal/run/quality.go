package run

// Quality selects the mesh generation fidelity for a run.
type Quality string

const (
	QualityPreview Quality = "preview"
	QualityFinal   Quality = "final"
)
