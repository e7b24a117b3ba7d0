package auth

import (
	"carrental/model"
	"carrental/util/hash"
)

// CheckSecurityAnswers compares every answer against its stored hash and
// returns the number of the first wrong one, or 0 when all match.
func CheckSecurityAnswers(sec model.SecurityAnswers, answers [3]string) int {
	for i := range answers {
		if sec.Hashes[i] == "" || !hash.CheckAnswer(sec.Hashes[i], answers[i]) {
			return i + 1
		}
	}
	return 0
}

func hashSecurity(req model.RegisterReq) (model.SecurityAnswers, error) {
	sec := model.SecurityAnswers{
		Questions: [3]string{req.SecurityQuestion1, req.SecurityQuestion2, req.SecurityQuestion3},
	}
	for i, a := range [3]string{req.SecurityAnswer1, req.SecurityAnswer2, req.SecurityAnswer3} {
		// an unset answer keeps an empty hash, which never matches
		if hash.NormalizeAnswer(a) == "" {
			continue
		}
		h, err := hash.HashAnswer(a)
		if err != nil {
			return sec, err
		}
		sec.Hashes[i] = h
	}
	return sec, nil
}
