package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	exprlang "github.com/expr-lang/expr"

	"github.com/solhwan/pointclick/pkg/action"
	"github.com/solhwan/pointclick/pkg/catalog"
	"github.com/solhwan/pointclick/pkg/scene"
)

func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	validator := &DataValidator{dataDir: dataDir}

	if err := validator.validateAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Game data is valid!")
}

type DataValidator struct {
	dataDir  string
	itemIDs  map[string]bool
	sceneIDs map[string]bool
	errors   []string
}

func (v *DataValidator) validateAll() error {
	doc, err := v.loadCatalog()
	if err != nil {
		return err
	}

	v.itemIDs = make(map[string]bool)
	for _, item := range doc.Items {
		v.itemIDs[item.ID] = true
	}

	sceneFiles, err := filepath.Glob(filepath.Join(v.dataDir, "scenes", "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list scenes: %w", err)
	}
	if len(sceneFiles) == 0 {
		return fmt.Errorf("no scene files found under %s", filepath.Join(v.dataDir, "scenes"))
	}

	v.sceneIDs = make(map[string]bool)
	for _, path := range sceneFiles {
		v.sceneIDs[strings.TrimSuffix(filepath.Base(path), ".json")] = true
	}

	if doc.StartingScene != "" && !v.sceneIDs[doc.StartingScene] {
		v.addError(fmt.Sprintf("starting_scene '%s' has no scene file", doc.StartingScene))
	}

	for _, path := range sceneFiles {
		v.validateSceneFile(path)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *DataValidator) loadCatalog() (*catalog.Document, error) {
	path := filepath.Join(v.dataDir, "game-data.json")
	fmt.Printf("Validating %s...\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc catalog.Document
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("file %s failed strict JSON unmarshaling: %w", path, err)
	}

	for _, e := range doc.Validate() {
		v.addError(e.Error())
	}

	for _, item := range doc.Items {
		v.validateIDFormat("item ID", item.ID)
	}

	return &doc, nil
}

func (v *DataValidator) validateSceneFile(path string) {
	fmt.Printf("Validating %s...\n", path)

	baseName := strings.TrimSuffix(filepath.Base(path), ".json")
	if !isValidID(baseName) {
		v.addError(fmt.Sprintf("scene filename '%s' should be lowercase snake_case", filepath.Base(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		v.addError(fmt.Sprintf("failed to read %s: %v", path, err))
		return
	}

	var cfg scene.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		v.addError(fmt.Sprintf("file %s failed JSON unmarshaling: %v", path, err))
		return
	}

	seen := make(map[string]bool)
	for _, hc := range cfg.Hotspots {
		v.validateIDFormat("hotspot ID", hc.ID)
		if seen[hc.ID] {
			v.addError(fmt.Sprintf("scene %s has duplicate hotspot ID '%s'", baseName, hc.ID))
		}
		seen[hc.ID] = true

		if hc.VisibleWhen != "" {
			v.validateExpression(fmt.Sprintf("hotspot %s in scene %s", hc.ID, baseName), hc.VisibleWhen)
		}
		ctx := fmt.Sprintf("hotspot %s in scene %s", hc.ID, baseName)
		v.validateAction(ctx, hc.Action)
		for itemID, act := range hc.ItemActions {
			if !v.itemIDs[itemID] {
				v.addError(fmt.Sprintf("%s binds unknown item '%s'", ctx, itemID))
			}
			v.validateAction(ctx, act)
		}
	}

	for _, ic := range cfg.Items {
		v.validateIDFormat("scene item ID", ic.ID)
		if !v.itemIDs[ic.ID] {
			v.addError(fmt.Sprintf("scene %s places unknown item '%s'", baseName, ic.ID))
		}
	}

	v.validateAction(fmt.Sprintf("intro event of scene %s", baseName), cfg.IntroEvent)
}

func (v *DataValidator) validateAction(context string, act *action.Action) {
	if act == nil {
		return
	}

	switch act.Type {
	case action.TypeDialog:
		if act.Text == "" {
			v.addError(fmt.Sprintf("%s has dialog action without text", context))
		}
	case action.TypeConversation:
		if len(act.Conversation) == 0 {
			v.addError(fmt.Sprintf("%s has conversation action without lines", context))
		}
		v.validateConversation(context, act.Conversation)
	case action.TypeChangeScene:
		if !v.sceneIDs[act.TargetScene] {
			v.addError(fmt.Sprintf("%s changes to unknown scene '%s'", context, act.TargetScene))
		}
	case action.TypeGiveItem:
		if !v.itemIDs[act.ItemID] {
			v.addError(fmt.Sprintf("%s gives unknown item '%s'", context, act.ItemID))
		}
	case action.TypeRequireItem:
		if !v.itemIDs[act.Item] {
			v.addError(fmt.Sprintf("%s requires unknown item '%s'", context, act.Item))
		}
		v.validateAction(context, act.SuccessAction)
	case action.TypeToggleObject:
		if act.ToggleTexture == "" && len(act.StateTexts) == 0 && act.Sound == "" {
			v.addError(fmt.Sprintf("%s has toggle action with no visible effect", context))
		}
	case action.TypePlayAnimation:
		if len(act.Props) == 0 {
			v.addError(fmt.Sprintf("%s has animation action without properties", context))
		}
		v.validateAction(context, act.OnAnimComplete)
	case action.TypePlaySound:
		if act.Sound == "" {
			v.addError(fmt.Sprintf("%s has sound action without a key", context))
		}
	case action.TypeSetFlag:
		if act.Flag == "" {
			v.addError(fmt.Sprintf("%s has setFlag action without a flag name", context))
		}
		v.validateIDFormat("flag name", act.Flag)
	case action.TypeConditional:
		v.validateExpression(context, act.When)
		v.validateAction(context, act.Then)
		v.validateAction(context, act.Else)
	case action.TypeCustom:
		if act.Handler == "" {
			v.addError(fmt.Sprintf("%s has custom action without a handler name", context))
		}
	default:
		v.addError(fmt.Sprintf("%s has unknown action type '%s'", context, act.Type))
	}

	v.validateAction(context, act.OnComplete)
}

func (v *DataValidator) validateConversation(context string, lines []action.Line) {
	for i, line := range lines {
		if line.Text == "" {
			v.addError(fmt.Sprintf("%s line %d has no text", context, i))
		}
		for j, choice := range line.Choices {
			if choice.Text == "" {
				v.addError(fmt.Sprintf("%s line %d choice %d has no text", context, i, j))
			}
			if choice.NextIndex != nil && (*choice.NextIndex < 0 || *choice.NextIndex > len(lines)) {
				v.addError(fmt.Sprintf("%s line %d choice %d jumps out of range (%d)", context, i, j, *choice.NextIndex))
			}
			if choice.NextLines != nil {
				v.validateConversation(context, choice.NextLines)
			}
			v.validateAction(context, choice.Action)
		}
	}
}

func (v *DataValidator) validateExpression(context, expression string) {
	if expression == "" {
		v.addError(fmt.Sprintf("%s has an empty condition expression", context))
		return
	}
	if _, err := exprlang.Compile(expression); err != nil {
		v.addError(fmt.Sprintf("%s has invalid condition '%s': %v", context, expression, err))
	}
}

func (v *DataValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *DataValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
