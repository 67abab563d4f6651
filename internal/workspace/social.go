package workspace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultBond = 50.0

// NextEntityID 扫描 social 文档中已有的 npc_<n> 编号并返回下一个可用 id。
func (s *Store) NextEntityID() string {
	max := 0
	raw := s.RawDoc(DocSocial)
	if raw != nil {
		gjson.GetBytes(raw, "entities.#.id").ForEach(func(_, id gjson.Result) bool {
			rest, ok := strings.CutPrefix(id.String(), "npc_")
			if !ok {
				return true
			}
			if n, err := strconv.Atoi(rest); err == nil && n > max {
				max = n
			}
			return true
		})
	}
	return fmt.Sprintf("npc_%d", max+1)
}

// AddSocialEntity 向 social 文档追加一个实体并分配 id 与初始 bond。
func (s *Store) AddSocialEntity(entity map[string]any) (map[string]any, error) {
	if entity == nil {
		entity = map[string]any{}
	}
	entity["id"] = s.NextEntityID()
	if _, ok := entity["bond"]; !ok {
		entity["bond"] = defaultBond
	}
	doc := s.LoadDoc(DocSocial)
	entities, _ := doc["entities"].([]any)
	doc["entities"] = append(entities, entity)
	if err := s.SaveDoc(DocSocial, doc); err != nil {
		return nil, err
	}
	return entity, nil
}
