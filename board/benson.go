package board

// CalculatePassAliveRegions runs Benson's algorithm independently for each
// color and returns, for that color, the set of points belonging either to
// an unconditionally-alive chain or to one of its vital (small) regions.
//
// Algorithm (iterative discard, per spec §4.C): start with every chain of
// the color as "living". A region is small-for-living if it borders no
// opposing stones and every chain bordering it is in living. Discard any
// living chain with fewer than two small-for-living regions bordering it;
// repeat, recomputing smallness against the shrunk living set, until a
// fixed point.
func (p *Position) CalculatePassAliveRegions() (black, white []bool) {
	return p.benson(Black), p.benson(White)
}

func (p *Position) benson(color Color) []bool {
	regions := p.emptyRegions()

	living := map[GroupID]bool{}
	groupColor := map[GroupID]Color{}
	for i, s := range p.Stones {
		_ = i
		if s.Color == color {
			living[s.Group] = true
			groupColor[s.Group] = color
		}
	}

	for {
		smallRegions := make([]*region, 0, len(regions))
		for _, r := range regions {
			if r.borders[color.Opponent()] {
				continue
			}
			allLiving := true
			for g := range r.groups {
				if groupColor[g] != color || !living[g] {
					allLiving = false
					break
				}
			}
			if allLiving && len(r.groups) > 0 {
				smallRegions = append(smallRegions, r)
			}
		}

		vitalCount := map[GroupID]int{}
		for _, r := range smallRegions {
			for g := range r.groups {
				vitalCount[g]++
			}
		}

		changed := false
		for g := range living {
			if vitalCount[g] < 2 {
				delete(living, g)
				changed = true
			}
		}
		if !changed {
			// fixed point: report living chains plus their vital regions.
			result := make([]bool, p.N*p.N)
			for i, s := range p.Stones {
				if s.Color == color && living[s.Group] {
					result[i] = true
				}
			}
			for _, r := range smallRegions {
				allStillLiving := true
				for g := range r.groups {
					if !living[g] {
						allStillLiving = false
						break
					}
				}
				if allStillLiving {
					for _, pt := range r.points {
						result[pt] = true
					}
				}
			}
			return result
		}
	}
}

// CalculateWholeBoardPassAlive reports whether every empty point on the
// board belongs to a pass-alive region of one color or the other.
func (p *Position) CalculateWholeBoardPassAlive() bool {
	black, white := p.CalculatePassAliveRegions()
	for i, s := range p.Stones {
		if s.Color != Empty {
			continue
		}
		if !black[i] && !white[i] {
			return false
		}
	}
	return true
}
