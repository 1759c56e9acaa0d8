// Package kinetics implements microbial growth under Monod kinetics.
//
// The state vector is [X, S]: biomass and limiting substrate concentration,
// both in g/L. The specific growth rate saturates with substrate,
//
//	mu(S) = MuMax * S / (Ks + S)
//
// and substrate is consumed in proportion to growth through the yield Yxs:
//
//	dX/dt = mu(S) * X
//	dS/dt = -(1/Yxs) * mu(S) * X
//
// so X + Yxs*S is conserved along every trajectory (see [Monod.Invariant]).
package kinetics
