package parser

import (
	"sanctions-sync/internal/domain/entity"
)

var (
	unDataID        = plain("DATAID")
	unFirstName     = plain("FIRST_NAME")
	unSecondName    = plain("SECOND_NAME")
	unThirdName     = plain("THIRD_NAME")
	unFourthName    = plain("FOURTH_NAME")
	unListType      = plain("UN_LIST_TYPE")
	unListedOn      = plain("LISTED_ON")
	unComments1     = plain("COMMENTS1")
	unEntityAddress = plain("ENTITY_ADDRESS")
	unCity          = plain("CITY")
	unCountry       = plain("COUNTRY")
)

// ParseConsolidatedIndividuals extracts every INDIVIDUAL element below the
// root of a UN Consolidated list document.
//
// DATAID is returned verbatim; the four name parts are trimmed. This differs
// from ParseConsolidatedEntities, which trims DATAID, and both behaviors are
// relied upon by the stored tables.
func ParseConsolidatedIndividuals(data []byte) ([]entity.ConsolidatedIndividual, error) {
	if data == nil {
		return []entity.ConsolidatedIndividual{}, ErrNoData
	}

	found, err := walk(data, walkOptions{match: localName("INDIVIDUAL")})
	if err != nil {
		return []entity.ConsolidatedIndividual{}, err
	}

	individuals := make([]entity.ConsolidatedIndividual, 0, len(found))
	for _, el := range found {
		individuals = append(individuals, entity.ConsolidatedIndividual{
			DataID:     el.childText(unDataID),
			FirstName:  el.childTrimmed(unFirstName),
			SecondName: el.childTrimmed(unSecondName),
			ThirdName:  el.childTrimmed(unThirdName),
			FourthName: el.childTrimmed(unFourthName),
		})
	}
	return individuals, nil
}

// ParseConsolidatedEntities extracts every ENTITY element below the root of a
// UN Consolidated list document. All fields are trimmed. City and country are
// looked up as ENTITY_ADDRESS/CITY and ENTITY_ADDRESS/COUNTRY, taking the
// first match across all addresses.
func ParseConsolidatedEntities(data []byte) ([]entity.ConsolidatedEntity, error) {
	if data == nil {
		return []entity.ConsolidatedEntity{}, ErrNoData
	}

	found, err := walk(data, walkOptions{match: localName("ENTITY")})
	if err != nil {
		return []entity.ConsolidatedEntity{}, err
	}

	entities := make([]entity.ConsolidatedEntity, 0, len(found))
	for _, el := range found {
		entities = append(entities, entity.ConsolidatedEntity{
			DataID:     el.childTrimmed(unDataID),
			FirstName:  el.childTrimmed(unFirstName),
			UNListType: el.childTrimmed(unListType),
			ListedOn:   el.childTrimmed(unListedOn),
			Comments1:  el.childTrimmed(unComments1),
			City:       el.pathTrimmed(unEntityAddress, unCity),
			Country:    el.pathTrimmed(unEntityAddress, unCountry),
		})
	}
	return entities, nil
}
