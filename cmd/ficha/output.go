package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

func (c *cli) printRecord(rec *entities.Record) error {
	if c.asJSON {
		return printJSON(c.out, rec)
	}
	writeSheet(c.out, rec)
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	_, err = w.Write(pretty.Pretty(data))
	return err
}

func writeSheet(w io.Writer, rec *entities.Record) {
	kind := "ficha"
	if rec.IsNPC {
		kind = "npc"
	}
	fmt.Fprintf(w, "%s (%s %s)  level %d  xp %d\n", rec.DisplayName, kind, rec.ID, rec.Level, rec.Experience)
	if rec.Profile.CharacterName != "" {
		fmt.Fprintf(w, "  %s\n", rec.Profile.CharacterName)
	}

	a := rec.Attributes
	fmt.Fprintf(w, "STR %d  DEX %d  AGI %d  CON %d  INT %d\n",
		a.Strength, a.Dexterity, a.Agility, a.Constitution, a.Intelligence)
	fmt.Fprintf(w, "attack %d  magic %d  accuracy %d  dodge %d  reduction %d/%d\n",
		rec.Attack, rec.MagicAttack, rec.Accuracy, rec.Dodge,
		rec.PhysicalDamageReduction, rec.MagicDamageReduction)
	fmt.Fprintf(w, "health %s  mana %s  stamina %s\n",
		resource(rec.Health), resource(rec.Mana), resource(rec.Stamina))
	fmt.Fprintf(w, "points: skill %d/%d  advantage %d/%d  souls %d/%d\n",
		rec.SkillPointsAvailable, rec.SkillPointsTotal,
		rec.AdvantagePointsAvailable, rec.AdvantagePointsTotal,
		rec.SoulsAvailable, rec.SoulsTotal)
	fmt.Fprintf(w, "load %s/%d  run %d  jump %d/%d\n",
		num(rec.TotalWeight), rec.CarryCapacity, rec.RunSpeed, rec.JumpHeight, rec.JumpDistance)

	if rec.SelectedRace != "" || rec.SelectedClass != "" {
		fmt.Fprintf(w, "race %s  class %s\n", orDash(string(rec.SelectedRace)), orDash(string(rec.SelectedClass)))
	}
	if len(rec.SelectedAdvantages) > 0 {
		fmt.Fprintf(w, "advantages: %s\n", joinIDs(rec.SelectedAdvantages.Sorted()))
	}
	if len(rec.SelectedDisadvantages) > 0 {
		fmt.Fprintf(w, "disadvantages: %s\n", joinIDs(rec.SelectedDisadvantages.Sorted()))
	}
	if len(rec.AcquiredClassAbilities) > 0 {
		fmt.Fprintf(w, "abilities: %s\n", joinIDs(rec.AcquiredClassAbilities.Sorted()))
	}
	if len(rec.GMAdjustments) > 0 {
		fields := make([]string, 0, len(rec.GMAdjustments))
		for f, delta := range rec.GMAdjustments {
			fields = append(fields, fmt.Sprintf("%s %+d", f, delta))
		}
		sort.Strings(fields)
		fmt.Fprintf(w, "gm: %s\n", strings.Join(fields, ", "))
	}
}

func resource(r entities.Resource) string {
	return fmt.Sprintf("%s/%s (+%s)", num(r.Current), num(r.Total), num(r.Regeneration))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinIDs[T ~string](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
