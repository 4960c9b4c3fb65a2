// Package packets defines the controller <-> actuator wire formats.
//
// Each format has a fixed-size array type, an Encode/Decode pair over that
// array (the size is structural, so no length error is possible) and a
// Parse entry point over a byte slice that validates the length first.
//
//	format        size  discriminant                    fields
//	arm_state        9  0=ready 1=working 2=waiting     value, arm_id
//	item_reach      13  0=in_reach 1=out_reach          index, pos_x, pos_y
//	new_item         8  -                               id, location
//	take_item        4  -                               id
//	pick_up_item     4  -                               id
package packets
