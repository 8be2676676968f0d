package neural

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Capacity is the largest topology a Network can ever hold.
type Capacity struct {
	Inputs    int
	NonInputs int
}

// Option configures a Network at construction.
type Option func(*Network)

// WithMaxWeight rejects weights whose magnitude exceeds bound. Zero disables the check.
func WithMaxWeight(bound float64) Option {
	return func(n *Network) {
		n.maxWeight = math.Abs(bound)
	}
}

// WithTransfer registers the transfer function used for kind. It is the only
// way to make KindCTRNNSigmoid and KindSUPG usable, and may also replace a
// built-in definition.
func WithTransfer(kind Kind, fn TransferFunc) Option {
	return func(n *Network) {
		if fn == nil {
			delete(n.transfers, kind)
			return
		}
		n.transfers[kind] = fn
	}
}

// Network is a fixed-capacity neural controller whose topology can change
// between ticks without reallocating its weight matrix.
type Network struct {
	capacity  Capacity
	maxWeight float64
	transfers map[Kind]TransferFunc

	nInputs  int
	nOutputs int
	nHidden  int

	// Rows are destination slots; columns are input positions (inW) or
	// source slots (recW).
	inW  *mat.Dense
	recW *mat.Dense

	// Dense, position-indexed. Outputs occupy [0, nOutputs).
	kinds  []Kind
	params []Params
	fns    []TransferFunc
	slots  []int
	ids    []string

	free []int

	state [2][]float64
	cur   int
	input []float64

	inputIDs   []string
	inputIndex map[string]int
	nodeIndex  map[string]int
}

// New allocates a Network able to hold up to capacity neurons.
func New(capacity Capacity, opts ...Option) (*Network, error) {
	if capacity.Inputs < 0 || capacity.NonInputs < 0 {
		return nil, &TopologyError{Op: "new", Err: fmt.Errorf("%w: negative capacity %+v", ErrCapacityExceeded, capacity)}
	}

	n := &Network{
		capacity:   capacity,
		transfers:  defaultTransfers(),
		inW:        newWeights(capacity.NonInputs, capacity.Inputs),
		recW:       newWeights(capacity.NonInputs, capacity.NonInputs),
		kinds:      make([]Kind, capacity.NonInputs),
		params:     make([]Params, capacity.NonInputs),
		fns:        make([]TransferFunc, capacity.NonInputs),
		slots:      make([]int, capacity.NonInputs),
		ids:        make([]string, capacity.NonInputs),
		free:       make([]int, capacity.NonInputs),
		input:      make([]float64, capacity.Inputs),
		inputIDs:   make([]string, 0, capacity.Inputs),
		inputIndex: make(map[string]int, capacity.Inputs),
		nodeIndex:  make(map[string]int, capacity.NonInputs),
	}
	n.state[0] = make([]float64, capacity.NonInputs)
	n.state[1] = make([]float64, capacity.NonInputs)

	// Pop order hands out slot 0 first.
	for i := range n.free {
		n.free[i] = capacity.NonInputs - 1 - i
	}

	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func newWeights(rows, cols int) *mat.Dense {
	if rows == 0 || cols == 0 {
		return nil
	}
	return mat.NewDense(rows, cols, nil)
}

func (n *Network) Capacity() Capacity { return n.capacity }
func (n *Network) NumInputs() int     { return n.nInputs }
func (n *Network) NumOutputs() int    { return n.nOutputs }
func (n *Network) NumHidden() int     { return n.nHidden }
func (n *Network) numNonInputs() int  { return n.nOutputs + n.nHidden }

func (n *Network) AddInputNeuron(id string) error {
	if err := n.checkNewID(id); err != nil {
		return &TopologyError{Op: "add input", ID: id, Err: err}
	}
	if n.nInputs >= n.capacity.Inputs {
		return &TopologyError{Op: "add input", ID: id, Err: fmt.Errorf("%w: %d inputs", ErrCapacityExceeded, n.capacity.Inputs)}
	}
	n.inputIndex[id] = n.nInputs
	n.inputIDs = append(n.inputIDs, id)
	n.nInputs++
	return nil
}

// AddNonInputNeuron registers an output or hidden neuron. Outputs always
// occupy the first positions: an output registered after hidden neurons is
// inserted in front of them.
func (n *Network) AddNonInputNeuron(id string, layer Layer, kind Kind, params Params) error {
	if err := n.checkNonInput(id, layer, kind, params); err != nil {
		return &TopologyError{Op: "add " + layer.String(), ID: id, Err: err}
	}
	n.insertNonInput(id, layer, kind, params)
	return nil
}

func (n *Network) checkNewID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrMissingAttribute)
	}
	if _, ok := n.inputIndex[id]; ok {
		return ErrDuplicateNeuron
	}
	if _, ok := n.nodeIndex[id]; ok {
		return ErrDuplicateNeuron
	}
	return nil
}

func (n *Network) checkNonInput(id string, layer Layer, kind Kind, params Params) error {
	if err := n.checkNewID(id); err != nil {
		return err
	}
	if layer != LayerOutput && layer != LayerHidden {
		return fmt.Errorf("%w: layer %s", ErrMalformed, layer)
	}
	if kind == KindInput {
		return fmt.Errorf("%w: %s neuron cannot have kind input", ErrUnsupportedKind, layer)
	}
	if _, ok := n.transfers[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err := validateParams(kind, params); err != nil {
		return err
	}
	if n.numNonInputs() >= n.capacity.NonInputs || len(n.free) == 0 {
		return fmt.Errorf("%w: %d non-input neurons", ErrCapacityExceeded, n.capacity.NonInputs)
	}
	return nil
}

// insertNonInput assumes checkNonInput passed.
func (n *Network) insertNonInput(id string, layer Layer, kind Kind, params Params) {
	slot := n.free[len(n.free)-1]
	n.free = n.free[:len(n.free)-1]

	pos := n.numNonInputs()
	if layer == LayerOutput {
		pos = n.nOutputs
		n.shiftRight(pos)
		n.nOutputs++
	} else {
		n.nHidden++
	}

	n.kinds[pos] = kind
	n.params[pos] = params
	n.fns[pos] = n.transfers[kind]
	n.slots[pos] = slot
	n.ids[pos] = id
	n.state[0][pos] = 0
	n.state[1][pos] = 0
	n.nodeIndex[id] = pos
}

// shiftRight opens a gap at pos in every dense array.
func (n *Network) shiftRight(pos int) {
	end := n.numNonInputs()
	copy(n.kinds[pos+1:end+1], n.kinds[pos:end])
	copy(n.params[pos+1:end+1], n.params[pos:end])
	copy(n.fns[pos+1:end+1], n.fns[pos:end])
	copy(n.slots[pos+1:end+1], n.slots[pos:end])
	copy(n.ids[pos+1:end+1], n.ids[pos:end])
	copy(n.state[0][pos+1:end+1], n.state[0][pos:end])
	copy(n.state[1][pos+1:end+1], n.state[1][pos:end])
	for p := pos + 1; p <= end; p++ {
		n.nodeIndex[n.ids[p]] = p
	}
}

// shiftLeft closes the gap left by pos in every dense array.
func (n *Network) shiftLeft(pos int) {
	end := n.numNonInputs()
	copy(n.kinds[pos:end-1], n.kinds[pos+1:end])
	copy(n.params[pos:end-1], n.params[pos+1:end])
	copy(n.fns[pos:end-1], n.fns[pos+1:end])
	copy(n.slots[pos:end-1], n.slots[pos+1:end])
	copy(n.ids[pos:end-1], n.ids[pos+1:end])
	copy(n.state[0][pos:end-1], n.state[0][pos+1:end])
	copy(n.state[1][pos:end-1], n.state[1][pos+1:end])

	last := end - 1
	n.kinds[last] = 0
	n.params[last] = Params{}
	n.fns[last] = nil
	n.slots[last] = 0
	n.ids[last] = ""
	n.state[0][last] = 0
	n.state[1][last] = 0

	for p := pos; p < last; p++ {
		n.nodeIndex[n.ids[p]] = p
	}
}

// removeNonInput assumes pos addresses a hidden neuron.
func (n *Network) removeNonInput(pos int) {
	slot := n.slots[pos]
	id := n.ids[pos]

	if n.inW != nil {
		row := n.inW.RawRowView(slot)
		for i := range row {
			row[i] = 0
		}
	}
	row := n.recW.RawRowView(slot)
	for i := range row {
		row[i] = 0
	}
	for r := 0; r < n.capacity.NonInputs; r++ {
		n.recW.Set(r, slot, 0)
	}

	n.shiftLeft(pos)
	n.nHidden--
	delete(n.nodeIndex, id)
	n.free = append(n.free, slot)
}

// edge addresses one matrix cell.
type edge struct {
	fromInput bool
	col       int
	row       int
}

func (n *Network) resolveEdge(srcID, dstID string) (edge, error) {
	var e edge
	if _, ok := n.inputIndex[dstID]; ok {
		return e, fmt.Errorf("%w: %q", ErrInputDestination, dstID)
	}
	dst, ok := n.nodeIndex[dstID]
	if !ok {
		return e, fmt.Errorf("%w: destination %q", ErrUnknownNeuron, dstID)
	}
	e.row = n.slots[dst]

	if in, ok := n.inputIndex[srcID]; ok {
		e.fromInput = true
		e.col = in
		return e, nil
	}
	src, ok := n.nodeIndex[srcID]
	if !ok {
		return e, fmt.Errorf("%w: source %q", ErrUnknownNeuron, srcID)
	}
	e.col = n.slots[src]
	return e, nil
}

func (n *Network) checkWeight(w float64) error {
	if math.IsNaN(w) {
		return fmt.Errorf("%w: NaN", ErrWeightBound)
	}
	if n.maxWeight > 0 && math.Abs(w) > n.maxWeight {
		return fmt.Errorf("%w: |%g| > %g", ErrWeightBound, w, n.maxWeight)
	}
	return nil
}

func (n *Network) setEdge(e edge, w float64) {
	if e.fromInput {
		n.inW.Set(e.row, e.col, w)
		return
	}
	n.recW.Set(e.row, e.col, w)
}

func (n *Network) edgeWeight(e edge) float64 {
	if e.fromInput {
		return n.inW.At(e.row, e.col)
	}
	return n.recW.At(e.row, e.col)
}

// Connect sets the weight of the edge srcID -> dstID.
func (n *Network) Connect(srcID, dstID string, weight float64) error {
	e, err := n.resolveEdge(srcID, dstID)
	if err == nil {
		err = n.checkWeight(weight)
	}
	if err != nil {
		return &TopologyError{Op: "connect", ID: srcID + "->" + dstID, Err: err}
	}
	n.setEdge(e, weight)
	return nil
}

func (n *Network) Weight(srcID, dstID string) (float64, error) {
	e, err := n.resolveEdge(srcID, dstID)
	if err != nil {
		return 0, err
	}
	return n.edgeWeight(e), nil
}

// InputIndex returns the position of an input neuron in the Feed vector.
func (n *Network) InputIndex(id string) (int, error) {
	pos, ok := n.inputIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w: input %q", ErrUnknownNeuron, id)
	}
	return pos, nil
}

// OutputIndex returns the position of an output neuron in the Fetch vector.
func (n *Network) OutputIndex(id string) (int, error) {
	pos, ok := n.nodeIndex[id]
	if !ok || pos >= n.nOutputs {
		return 0, fmt.Errorf("%w: output %q", ErrUnknownNeuron, id)
	}
	return pos, nil
}

// NeuronInfo describes one neuron as reported by Neurons.
type NeuronInfo struct {
	ID       string
	Layer    Layer
	Kind     Kind
	Params   Params
	Position int
}

// Neurons lists inputs, then outputs, then hidden neurons in position order.
func (n *Network) Neurons() []NeuronInfo {
	out := make([]NeuronInfo, 0, n.nInputs+n.numNonInputs())
	for i, id := range n.inputIDs {
		out = append(out, NeuronInfo{ID: id, Layer: LayerInput, Kind: KindInput, Position: i})
	}
	for p := 0; p < n.numNonInputs(); p++ {
		layer := LayerHidden
		if p < n.nOutputs {
			layer = LayerOutput
		}
		out = append(out, NeuronInfo{
			ID:       n.ids[p],
			Layer:    layer,
			Kind:     n.kinds[p],
			Params:   n.params[p],
			Position: p,
		})
	}
	return out
}

// Neuron looks up a single neuron by id.
func (n *Network) Neuron(id string) (NeuronInfo, error) {
	if pos, ok := n.inputIndex[id]; ok {
		return NeuronInfo{ID: id, Layer: LayerInput, Kind: KindInput, Position: pos}, nil
	}
	pos, ok := n.nodeIndex[id]
	if !ok {
		return NeuronInfo{}, fmt.Errorf("%w: %q", ErrUnknownNeuron, id)
	}
	layer := LayerHidden
	if pos < n.nOutputs {
		layer = LayerOutput
	}
	return NeuronInfo{ID: id, Layer: layer, Kind: n.kinds[pos], Params: n.params[pos], Position: pos}, nil
}
