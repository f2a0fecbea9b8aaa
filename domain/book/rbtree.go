package book

type rbColor bool

const (
	red   rbColor = false
	black rbColor = true
)

type rbNode struct {
	price  Price
	lvl    *level
	color  rbColor
	left   *rbNode
	right  *rbNode
	parent *rbNode
}

// levelTree is a red-black tree of price levels keyed by price. The
// book keeps one per side; iteration order gives price priority
// directly (ascending for asks, descending for bids).
type levelTree struct {
	root *rbNode
	nil_ *rbNode
	size int
}

func newLevelTree() *levelTree {
	sentinel := &rbNode{color: black}
	sentinel.left = sentinel
	sentinel.right = sentinel
	sentinel.parent = sentinel
	return &levelTree{root: sentinel, nil_: sentinel}
}

func (t *levelTree) len() int { return t.size }

// get returns the level at price, or nil.
func (t *levelTree) get(price Price) *level {
	n := t.root
	for n != t.nil_ {
		switch {
		case price < n.price:
			n = n.left
		case price > n.price:
			n = n.right
		default:
			return n.lvl
		}
	}
	return nil
}

// upsert returns the level at price, inserting an empty one if absent.
func (t *levelTree) upsert(price Price) *level {
	parent := t.nil_
	cur := t.root
	for cur != t.nil_ {
		parent = cur
		switch {
		case price < cur.price:
			cur = cur.left
		case price > cur.price:
			cur = cur.right
		default:
			return cur.lvl
		}
	}
	n := &rbNode{
		price:  price,
		lvl:    newLevel(price),
		color:  red,
		left:   t.nil_,
		right:  t.nil_,
		parent: parent,
	}
	if parent == t.nil_ {
		t.root = n
	} else if price < parent.price {
		parent.left = n
	} else {
		parent.right = n
	}
	t.size++
	t.insertFixup(n)
	return n.lvl
}

// remove deletes the level at price if present.
func (t *levelTree) remove(price Price) {
	z := t.root
	for z != t.nil_ {
		switch {
		case price < z.price:
			z = z.left
		case price > z.price:
			z = z.right
		default:
			t.delete(z)
			return
		}
	}
}

// min returns the lowest-priced level, or nil when empty.
func (t *levelTree) min() *level {
	if t.root == t.nil_ {
		return nil
	}
	return t.minNode(t.root).lvl
}

// max returns the highest-priced level, or nil when empty.
func (t *levelTree) max() *level {
	if t.root == t.nil_ {
		return nil
	}
	return t.maxNode(t.root).lvl
}

// ascend visits levels in ascending price order until fn returns false.
func (t *levelTree) ascend(fn func(*level) bool) {
	t.ascendFrom(t.root, fn)
}

func (t *levelTree) ascendFrom(n *rbNode, fn func(*level) bool) bool {
	if n == t.nil_ {
		return true
	}
	if !t.ascendFrom(n.left, fn) {
		return false
	}
	if !fn(n.lvl) {
		return false
	}
	return t.ascendFrom(n.right, fn)
}

// descend visits levels in descending price order until fn returns false.
func (t *levelTree) descend(fn func(*level) bool) {
	t.descendFrom(t.root, fn)
}

func (t *levelTree) descendFrom(n *rbNode, fn func(*level) bool) bool {
	if n == t.nil_ {
		return true
	}
	if !t.descendFrom(n.right, fn) {
		return false
	}
	if !fn(n.lvl) {
		return false
	}
	return t.descendFrom(n.left, fn)
}

func (t *levelTree) minNode(n *rbNode) *rbNode {
	for n.left != t.nil_ {
		n = n.left
	}
	return n
}

func (t *levelTree) maxNode(n *rbNode) *rbNode {
	for n.right != t.nil_ {
		n = n.right
	}
	return n
}

func (t *levelTree) rotateLeft(x *rbNode) {
	y := x.right
	x.right = y.left
	if y.left != t.nil_ {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nil_ {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *levelTree) rotateRight(x *rbNode) {
	y := x.left
	x.left = y.right
	if y.right != t.nil_ {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nil_ {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *levelTree) insertFixup(z *rbNode) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rotateRight(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *levelTree) transplant(u, v *rbNode) {
	if u.parent == t.nil_ {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *levelTree) delete(z *rbNode) {
	y := z
	yColor := y.color
	var x *rbNode
	switch {
	case z.left == t.nil_:
		x = z.right
		t.transplant(z, z.right)
	case z.right == t.nil_:
		x = z.left
		t.transplant(z, z.left)
	default:
		y = t.minNode(z.right)
		yColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}
	t.size--
	if yColor == black {
		t.deleteFixup(x)
	}
}

func (t *levelTree) deleteFixup(x *rbNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rotateRight(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
