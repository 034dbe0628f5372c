package deck

import (
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

// EventPoint converts a live score into event points.
//
// musicRate is the chart's event rate in percent and bonus the deck's total
// event bonus in percent. otherScore is the sum of the other players' scores
// in multi lives; zero assumes four copies of selfScore.
func EventPoint(lt enums.LiveType, et enums.EventType, selfScore int, musicRate, bonus float64, otherScore, life int) (int, error) {
	mr := musicRate / 100
	dr := bonus/100 + 1
	if otherScore == 0 {
		otherScore = 4 * selfScore
	}

	switch lt {
	case enums.LiveSolo, enums.LiveAuto:
		base := float64(100 + selfScore/20000)
		return int(base * mr * dr), nil
	case enums.LiveChallenge:
		return (100 + selfScore/20000) * 120, nil
	case enums.LiveMulti:
		if et == enums.EventCheerfulCarnival {
			return 0, errs.Config("multi live is not playable in a cheerful carnival event")
		}
		return int(multiBase(selfScore, otherScore) * mr * dr), nil
	case enums.LiveCheerful:
		if et != enums.EventCheerfulCarnival {
			return 0, errs.Config("cheerful live is only playable in a cheerful carnival event")
		}
		lifeRate := 1.15 + min(max(float64(life)/5000, 0.1), 0.2)
		return int(float64(int(multiBase(selfScore, otherScore)*mr*dr)) * lifeRate), nil
	}
	return 0, errs.Config("invalid live type: %s", lt)
}

func multiBase(selfScore, otherScore int) float64 {
	return float64(110 + int(float64(selfScore)/17000) + min(13, int(float64(otherScore)/340000)))
}
