package model

// variable holds the attributes of a scheduling decision: teacher teaches an occurrence of section in room on day at period.
// All attributes are positions in the model input or the calendar, occurrence is 0-based
type variable struct {
	teacher, section, room, day, period, occurrence int
}

// indexer gives a unique index to each variable of the pruned space and vice versa. Only registered variables exist
type indexer interface {
	// Returns the index of the variable and whether it belongs to the space
	Index(variable variable) (uint64, bool)
	// Returns the variable behind an index (1-based)
	Attributes(index uint64) variable
	// Returns the number of variables in the space
	Variables() uint64
	// Returns every variable in index order
	All() []variable
}

type sparseIndexer struct {
	indices   map[variable]uint64
	variables []variable
}

func newIndexer() *sparseIndexer {
	return &sparseIndexer{
		indices:   make(map[variable]uint64),
		variables: make([]variable, 0),
	}
}

// Registers a variable, the first one gets index 1
func (indexer *sparseIndexer) add(variable variable) uint64 {
	if index, ok := indexer.indices[variable]; ok {
		return index
	}
	indexer.variables = append(indexer.variables, variable)
	index := uint64(len(indexer.variables))
	indexer.indices[variable] = index
	return index
}

func (indexer *sparseIndexer) Index(variable variable) (uint64, bool) {
	index, ok := indexer.indices[variable]
	return index, ok
}

func (indexer *sparseIndexer) Attributes(index uint64) variable {
	return indexer.variables[index-1]
}

func (indexer *sparseIndexer) Variables() uint64 {
	return uint64(len(indexer.variables))
}

func (indexer *sparseIndexer) All() []variable {
	return indexer.variables
}

// Enumerates the pruned space in teacher, section, room, day, period, occurrence order
func buildVariables(modelInput ModelInput, evaluator predicateEvaluator) indexer {
	indexer := newIndexer()
	for teacher := range modelInput.Teachers {
		for section, classSection := range modelInput.Sections {
			if !evaluator.Qualified(teacher, section) {
				continue
			}
			for room := range modelInput.Rooms {
				for day := range Days {
					for period := range Periods {
						if !evaluator.Eligible(period) {
							continue
						}
						for occurrence := range classSection.OccurrencesPerWeek {
							indexer.add(variable{teacher, section, room, day, period, occurrence})
						}
					}
				}
			}
		}
	}
	return indexer
}
