package value

// LooseEqual implements the == cross-type coercion table.
func LooseEqual(a, b Value) (bool, error) {
	if a.tag == b.tag || (a.IsString() && b.IsString()) {
		return StrictEqual(a, b), nil
	}

	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}

	if a.tag == Number && b.IsString() {
		bn, err := ToNumber(b)
		if err != nil {
			return false, err
		}
		return a.num == bn, nil
	}
	if a.IsString() && b.tag == Number {
		an, err := ToNumber(a)
		if err != nil {
			return false, err
		}
		return an == b.num, nil
	}

	if a.tag == Boolean {
		an, err := ToNumber(a)
		if err != nil {
			return false, err
		}
		return LooseEqual(Num(an), b)
	}
	if b.tag == Boolean {
		bn, err := ToNumber(b)
		if err != nil {
			return false, err
		}
		return LooseEqual(a, Num(bn))
	}

	if (a.tag == Number || a.IsString() || a.tag == BigInt) && b.tag == Object {
		prim, err := ToPrimitive(b, "default")
		if err != nil {
			return false, err
		}
		return LooseEqual(a, prim)
	}
	if a.tag == Object && (b.tag == Number || b.IsString() || b.tag == BigInt) {
		prim, err := ToPrimitive(a, "default")
		if err != nil {
			return false, err
		}
		return LooseEqual(prim, b)
	}

	if a.tag == BigInt && b.IsString() {
		return a.ref == b.ref, nil // bigint/string cross-compare left to BigInt runtime support
	}

	return false, nil
}
