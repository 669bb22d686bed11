package types

import "fmt"

// Substitution maps inference-variable ids to their solved Type, mirroring
// the teacher's `Substitution map[string]Type` / `Unifier.Unify` idiom in
// internal/types/unification.go, keyed by int id instead of name since
// µScript mints fresh TVars rather than naming rigid scheme variables.
type Substitution map[int]Type

// Apply fully resolves every TVar in t through sub.
func Apply(sub Substitution, t Type) Type {
	switch n := t.(type) {
	case *TVar:
		if bound, ok := sub[n.ID]; ok {
			return Apply(sub, bound)
		}
		return n
	case TOptional:
		return TOptional{Elem: Apply(sub, n.Elem)}
	case TArray:
		return TArray{Elem: Apply(sub, n.Elem)}
	case TMap:
		return TMap{Key: Apply(sub, n.Key), Val: Apply(sub, n.Val)}
	case TTuple:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = Apply(sub, e)
		}
		return TTuple{Elems: elems}
	case TNamed:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = Apply(sub, a)
		}
		return TNamed{Name: n.Name, Args: args}
	case TFunc:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = Apply(sub, p)
		}
		return TFunc{Params: params, Return: Apply(sub, n.Return), Effects: n.Effects}
	default:
		return t
	}
}

func occurs(id int, t Type) bool {
	switch n := t.(type) {
	case *TVar:
		return n.ID == id
	case TOptional:
		return occurs(id, n.Elem)
	case TArray:
		return occurs(id, n.Elem)
	case TMap:
		return occurs(id, n.Key) || occurs(id, n.Val)
	case TTuple:
		for _, e := range n.Elems {
			if occurs(id, e) {
				return true
			}
		}
		return false
	case TNamed:
		for _, a := range n.Args {
			if occurs(id, a) {
				return true
			}
		}
		return false
	case TFunc:
		for _, p := range n.Params {
			if occurs(id, p) {
				return true
			}
		}
		return occurs(id, n.Return)
	default:
		return false
	}
}

// Unify attempts to unify t1 and t2 under sub, returning an updated
// substitution or an error describing the mismatch (spec.md §4.E
// "Integer types are disjoint", "no implicit widening").
func Unify(t1, t2 Type, sub Substitution) (Substitution, error) {
	t1 = Apply(sub, t1)
	t2 = Apply(sub, t2)

	if t1.equals(t2) {
		return sub, nil
	}

	switch a := t1.(type) {
	case *TVar:
		if occurs(a.ID, t2) {
			return nil, fmt.Errorf("occurs check failed: %s occurs in %s", a, t2)
		}
		out := extend(sub, a.ID, t2)
		return out, nil

	case TOptional:
		if b, ok := t2.(TOptional); ok {
			return Unify(a.Elem, b.Elem, sub)
		}
	case TArray:
		if b, ok := t2.(TArray); ok {
			return Unify(a.Elem, b.Elem, sub)
		}
	case TMap:
		if b, ok := t2.(TMap); ok {
			s2, err := Unify(a.Key, b.Key, sub)
			if err != nil {
				return nil, err
			}
			return Unify(a.Val, b.Val, s2)
		}
	case TTuple:
		if b, ok := t2.(TTuple); ok && len(a.Elems) == len(b.Elems) {
			cur := sub
			for i := range a.Elems {
				var err error
				cur, err = Unify(a.Elems[i], b.Elems[i], cur)
				if err != nil {
					return nil, err
				}
			}
			return cur, nil
		}
	case TNamed:
		if b, ok := t2.(TNamed); ok && a.Name == b.Name && len(a.Args) == len(b.Args) {
			cur := sub
			for i := range a.Args {
				var err error
				cur, err = Unify(a.Args[i], b.Args[i], cur)
				if err != nil {
					return nil, err
				}
			}
			return cur, nil
		}
	case TFunc:
		if b, ok := t2.(TFunc); ok && len(a.Params) == len(b.Params) {
			cur := sub
			for i := range a.Params {
				var err error
				cur, err = Unify(a.Params[i], b.Params[i], cur)
				if err != nil {
					return nil, err
				}
			}
			return Unify(a.Return, b.Return, cur)
		}
	}

	if b, ok := t2.(*TVar); ok {
		return Unify(b, t1, sub)
	}

	return nil, fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func extend(sub Substitution, id int, t Type) Substitution {
	out := make(Substitution, len(sub)+1)
	for k, v := range sub {
		out[k] = v
	}
	out[id] = t
	return out
}
