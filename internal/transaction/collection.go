package transaction

// entry is an element of one of a transaction's nested collections.
type entry interface {
	Document | Activity
	entryID() string
}

func prependEntry[E entry](list []E, e E) []E {
	out := make([]E, 0, len(list)+1)
	out = append(out, e)

	return append(out, list...)
}

func appendEntry[E entry](list []E, e E) []E {
	return append(list, e)
}

func indexOf[E entry](list []E, id string) int {
	for i := range list {
		if list[i].entryID() == id {
			return i
		}
	}

	return -1
}

// removeByID drops the entry with the given id, keeping the order of the rest.
func removeByID[E entry](list []E, entity, id string) ([]E, error) {
	i := indexOf(list, id)
	if i < 0 {
		return list, notFound(entity, id)
	}

	out := make([]E, 0, len(list)-1)
	out = append(out, list[:i]...)

	return append(out, list[i+1:]...), nil
}

// mutateByID applies fn to the entry with the given id in place.
func mutateByID[E entry](list []E, entity, id string, fn func(*E)) error {
	i := indexOf(list, id)
	if i < 0 {
		return notFound(entity, id)
	}

	fn(&list[i])

	return nil
}
