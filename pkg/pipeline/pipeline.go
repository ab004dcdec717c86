package pipeline

// Transformer is a preprocessing step fitted on training features and then
// applied to any partition.
type Transformer interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) ([][]float64, error)
}

// Pipeline chains multiple transformers.
type Pipeline struct {
	steps []Transformer
}

func NewPipeline(steps ...Transformer) *Pipeline {
	return &Pipeline{steps: steps}
}

// Fit fits each step on the output of the previous one.
func (p *Pipeline) Fit(X [][]float64) error {
	for _, step := range p.steps {
		if err := step.Fit(X); err != nil {
			return err
		}
		var err error
		if X, err = step.Transform(X); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) Transform(X [][]float64) ([][]float64, error) {
	for _, step := range p.steps {
		var err error
		if X, err = step.Transform(X); err != nil {
			return nil, err
		}
	}
	return X, nil
}

// Apply fits the chain on train and transforms both partitions with it.
func (p *Pipeline) Apply(train, test [][]float64) ([][]float64, [][]float64, error) {
	if err := p.Fit(train); err != nil {
		return nil, nil, err
	}
	tr, err := p.Transform(train)
	if err != nil {
		return nil, nil, err
	}
	te, err := p.Transform(test)
	if err != nil {
		return nil, nil, err
	}
	return tr, te, nil
}
